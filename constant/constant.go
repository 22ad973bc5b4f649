package constant

type VideoStatus string

const (
	VideoStatusUploading    VideoStatus = "UPLOADING"
	VideoStatusProcessing   VideoStatus = "PROCESSING"
	VideoStatusPartialReady VideoStatus = "PARTIAL_READY"
	VideoStatusReady        VideoStatus = "READY"
	VideoStatusError        VideoStatus = "ERROR"
)

type CourseStatus string

const (
	CourseStatusCreated    CourseStatus = "CREATED"
	CourseStatusProcessing CourseStatus = "PROCESSING"
	CourseStatusReady      CourseStatus = "READY"
	CourseStatusError      CourseStatus = "ERROR"
)

// NoteLanguages is the fixed set of languages course notes are generated in.
var NoteLanguages = []string{"en", "es", "ca"}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
