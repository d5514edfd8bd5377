package lexicons

// Record collections.
const (
	Profile string = "com.fypapp.profile"
	Like    string = "com.fypapp.like"
	Pass    string = "com.fypapp.pass"
	Match   string = "com.fypapp.match"
)

// Custom query/procedure methods.
const (
	GetProfile    string = "com.fypapp.getProfile"
	UpdateProfile string = "com.fypapp.updateProfile"
	Discover      string = "com.fypapp.discover"
)

// Generic atproto repo and server methods.
const (
	CreateRecord  string = "com.atproto.repo.createRecord"
	GetRecord     string = "com.atproto.repo.getRecord"
	ListRecords   string = "com.atproto.repo.listRecords"
	CreateSession string = "com.atproto.server.createSession"
	CreateAccount string = "com.atproto.server.createAccount"
)

// RKeySelf is the fixed record key of the singleton profile record.
const RKeySelf string = "self"
