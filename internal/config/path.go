package config

const (
	APIPrefix = "/api"

	EventPath    = APIPrefix + "/events/{event}"
	EditablePath = EventPath + "/contributions/{contrib}/editing/{type}"
	RevisionPath = EditablePath + "/{revision}"
	ServicePath  = EventPath + "/editing/service"
	FilesPath    = EventPath + "/editing/files"
	FilePath     = FilesPath + "/{file}"

	NotificationsPath = APIPrefix + "/notifications"
	AuthPath          = "/auth"
)
