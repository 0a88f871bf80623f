package app

import (
	"gorm.io/gorm"

	updaterepo "github.com/yungbote/repurpose-bot/internal/data/repos/update"
	userrepo "github.com/yungbote/repurpose-bot/internal/data/repos/user"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

type Repos struct {
	User            userrepo.UserRepo
	ProcessedUpdate updaterepo.ProcessedUpdateRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            userrepo.NewUserRepo(db, log),
		ProcessedUpdate: updaterepo.NewProcessedUpdateRepo(db, log),
	}
}
