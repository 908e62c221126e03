package properties

import (
	"os"
	"strconv"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// BatchWorkers bounds the per-location fan-out. Defaults to 8.
func BatchWorkers() int {
	if value, err := strconv.Atoi(os.Getenv("BATCH_WORKERS")); err == nil && value > 0 {
		return value
	}
	return 8
}

func ArchiveBaseURL() string {
	return os.Getenv("CLIMATE_ARCHIVE_URL")
}

func ArchiveClientID() string {
	return os.Getenv("CLIMATE_ARCHIVE_CLIENT_ID")
}

func ArchiveClientSecret() string {
	return os.Getenv("CLIMATE_ARCHIVE_CLIENT_SECRET")
}

func ArchiveTokenURL() string {
	return os.Getenv("CLIMATE_ARCHIVE_TOKEN_URL")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

func DiscordWarnNotificationUrl() string {
	return os.Getenv("DISCORD_WARN_NOTIFICATION_URL")
}
