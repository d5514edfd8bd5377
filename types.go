package fypapp

import "github.com/apiguave/fypapp-go/lexicons"

// Record is a typed value that can be stored in a repo collection.
// The four record schemas (profile, like, pass, match) implement it.
type Record interface {
	NSID() string
}

// RecordRef identifies a stored record version.
type RecordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// Location is the optional place sub-object of a profile.
type Location struct {
	City      string
	State     *string
	Country   *string
	Latitude  *float64
	Longitude *float64
}

// PhotoRef is an opaque reference to a stored picture.
type PhotoRef struct {
	Ref string
}

// Profile is the com.fypapp.profile record, stored once per identity
// under the rkey "self".
type Profile struct {
	DisplayName      *string
	Bio              *string
	Birthdate        *string
	Gender           *string
	LookingFor       []string
	Location         *Location
	Photos           []PhotoRef
	Interests        []string
	Height           *int
	Occupation       *string
	Education        *string
	RelationshipType *string
	Smoking          *string
	Drinking         *string
	Children         *string
	Pets             []string
	Languages        []string
	IsActive         *bool
	IsPremium        *bool
	CreatedAt        *string
	UpdatedAt        *string
}

func (Profile) NSID() string { return lexicons.Profile }

// Like is the com.fypapp.like record, one per swiped-right candidate.
type Like struct {
	Subject   string
	Message   *string
	CreatedAt string
	SuperLike bool
}

func (Like) NSID() string { return lexicons.Like }

// Pass is the com.fypapp.pass record, one per swiped-left candidate.
type Pass struct {
	Subject   string
	CreatedAt string
}

func (Pass) NSID() string { return lexicons.Pass }

// Match is the com.fypapp.match record. User1 and User2 are stored in
// lexicographic order so both parties write the identical record.
type Match struct {
	User1         string
	User2         string
	CreatedAt     string
	IsActive      bool
	LastMessageAt *string
}

func (Match) NSID() string { return lexicons.Match }

// ProfileCard is one discovery result: an identity, its profile
// snapshot, and optional ranking metadata.
type ProfileCard struct {
	DID             string
	Profile         *Profile
	Distance        *float64
	MatchScore      *int
	CommonInterests []string
	RecentlyActive  *bool
}

// ProfileView is the com.fypapp.getProfile output.
type ProfileView struct {
	Profile    *Profile
	URI        string
	CID        string
	MatchScore *int
	Distance   *float64
	IsLiked    *bool
	IsMatched  *bool
	IsBlocked  *bool
}

// Session is the live authentication state for one identity.
type Session struct {
	DID         string
	Handle      string
	AccessToken string
}
