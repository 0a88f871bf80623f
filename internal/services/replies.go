package services

import "strings"

// Fixed user-facing replies.
const (
	ReplyWelcomeNew            = "Welcome! You have %d free credits. Send me any text or a voice message and I will rewrite it into an Instagram ad script. Send /help to see all commands."
	ReplyWelcomeBack           = "Welcome back! Send me any text or a voice message and I will rewrite it into an Instagram ad script."
	ReplyOutOfCredits          = "You have run out of credits."
	ReplyCredits               = "You have %d credits left."
	ReplyGenerating            = "Generating Post..."
	ReplyGenerationFailed      = "Error happened while generating post."
	ReplyEmptyCompletion       = "Please try again."
	ReplyDescriptionSaved      = "Company description saved."
	ReplyDescriptionCurrent    = "Your company description:\n%s"
	ReplyDescriptionNotSet     = "Company description is not set. Send /description <text> to set it."
	ReplyLanguageSet           = "Response language set to: %s"
	ReplyLanguageUsage         = "Send /language <code>, for example /language es\nKnown codes: %s"
	ReplyYouTubeNeedsURL       = "Please send a YouTube link: /youtube <url>"
	ReplyTranscriptUnavailable = "Could not get a transcript for this video."
	ReplyTranscriptionFailed   = "Could not transcribe the voice message."
	ReplyGenericError          = "An error happened, please try again later."
	ReplyUnknownCommand        = "Unknown command. Send /help to see what I can do."
)

var ReplyHelp = strings.Join([]string{
	"Send me text or a voice message and I will rewrite it into an Instagram ad script (1 credit each).",
	"",
	"/start - create your account",
	"/description <text> - set your company description, or show it",
	"/language <code> - set the response language, e.g. es, de, fr",
	"/youtube <url> - rewrite a YouTube video from its captions",
	"/credits - show your remaining credits",
	"/help - show this message",
}, "\n")
