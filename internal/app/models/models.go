package models

// Role is the authorization role stored on a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// StudyStatus is the lifecycle state of a study group.
type StudyStatus string

const (
	StudyStatusRecruiting StudyStatus = "recruiting"
	StudyStatusInProgress StudyStatus = "in_progress"
	StudyStatusCompleted  StudyStatus = "completed"
)

// Valid reports whether s is a known status.
func (s StudyStatus) Valid() bool {
	switch s {
	case StudyStatusRecruiting, StudyStatusInProgress, StudyStatusCompleted:
		return true
	}
	return false
}

// MeetingType says where a study group meets.
type MeetingType string

const (
	MeetingOnline  MeetingType = "online"
	MeetingOffline MeetingType = "offline"
	MeetingBoth    MeetingType = "both"
)

// Valid reports whether m is a known meeting type.
func (m MeetingType) Valid() bool {
	switch m {
	case MeetingOnline, MeetingOffline, MeetingBoth:
		return true
	}
	return false
}

// NoticeCategory classifies notices.
type NoticeCategory string

const (
	NoticeImportant   NoticeCategory = "important"
	NoticeGeneral     NoticeCategory = "general"
	NoticeEvent       NoticeCategory = "event"
	NoticeMaintenance NoticeCategory = "maintenance"
)

// Valid reports whether c is a known notice category.
func (c NoticeCategory) Valid() bool {
	switch c {
	case NoticeImportant, NoticeGeneral, NoticeEvent, NoticeMaintenance:
		return true
	}
	return false
}

// PostCategory classifies community posts.
type PostCategory string

const (
	PostQuestion   PostCategory = "question"
	PostDiscussion PostCategory = "discussion"
	PostShare      PostCategory = "share"
	PostFree       PostCategory = "free"
)

// Valid reports whether c is a known post category.
func (c PostCategory) Valid() bool {
	switch c {
	case PostQuestion, PostDiscussion, PostShare, PostFree:
		return true
	}
	return false
}

// Study group size and duration bounds.
const (
	MinStudyMembers  = 2
	MaxStudyMembers  = 20
	MinStudyDuration = 1
	MaxStudyDuration = 52
)
