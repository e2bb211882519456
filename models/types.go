// ABOUTME: Data models for CRM entities and the belonging system
// ABOUTME: Defines User, Contact, Meeting, Task, Scope and the role/view/permission enums
package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role is a user's position in the organisation. Unknown strings are
// valid and fall into the most restricted tier.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleRegionalManager Role = "regional_manager"
	RoleTeamLead        Role = "team_lead"
	RoleProjectManager  Role = "project_manager"
	RoleSalesRep        Role = "sales_rep"
	RoleConsultant      Role = "consultant"
)

// ViewMode is the lens that decides which records a user sees.
type ViewMode string

const (
	ViewMyData          ViewMode = "my_data"
	ViewTeamData        ViewMode = "team_data"
	ViewRegionalData    ViewMode = "regional_data"
	ViewProjectTypeData ViewMode = "project_type_data"
	ViewAllData         ViewMode = "all_data"
)

// Resource is a permission-checked area of the CRM.
type Resource string

const (
	ResourceContacts Resource = "contacts"
	ResourceMeetings Resource = "meetings"
	ResourceTasks    Resource = "tasks"
	ResourceReports  Resource = "reports"
	ResourceSettings Resource = "settings"
)

// Action is an operation on a Resource.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

// Permissions is the resource -> action -> allowed matrix stored on a user.
// A nil matrix means "not configured" and is treated as allow-all.
type Permissions map[Resource]map[Action]bool

// FilterPreset parameterises the non-personal view modes. An empty
// dimension means the scope falls back to the user's own records.
type FilterPreset struct {
	Owner        []string `json:"owner"`
	ProjectTypes []string `json:"project_types"`
	Locations    []string `json:"locations"`
	Teams        []string `json:"teams"`
}

type DashboardConfig struct {
	ShowKPIs         []string `json:"show_kpis"`
	ShowCharts       bool     `json:"show_charts"`
	DefaultDateRange string   `json:"default_date_range"`
}

type User struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email,omitempty"`
	Role            Role             `json:"role"`
	Active          bool             `json:"active"`
	TeamName        string           `json:"team_name,omitempty"`
	ViewMode        ViewMode         `json:"view_mode,omitempty"`
	FilterPreset    FilterPreset     `json:"filter_preset"`
	Permissions     Permissions      `json:"permissions,omitempty"`
	DashboardConfig *DashboardConfig `json:"dashboard_config,omitempty"`
	Created         time.Time        `json:"created"`
	LastLogin       *time.Time       `json:"lastLogin,omitempty"`
}

// Scope carries the ownership fields the view-scope filter reads.
// Records embed it to satisfy ScopedRecord.
type Scope struct {
	Owner         string   `json:"owner,omitempty"`
	AssignedUsers []string `json:"assigned_users,omitempty"`
	Location      string   `json:"location,omitempty"`
	Region        string   `json:"region,omitempty"`
	ProjectType   string   `json:"project_type,omitempty"`
	TeamName      string   `json:"team_name,omitempty"`
}

// Scoped returns the record's ownership fields.
func (s Scope) Scoped() Scope { return s }

// AssignedTo reports whether userID is among the record's assignees.
func (s Scope) AssignedTo(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range s.AssignedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// ScopedRecord is anything the view-scope filter can select on.
type ScopedRecord interface {
	Scoped() Scope
}

// Contact statuses.
const (
	ContactStatusNew        = "New"
	ContactStatusInProgress = "In Progress"
	ContactStatusWaiting    = "Waiting for Contact"
	ContactStatusClosed     = "Closed"
)

// Meeting statuses.
const (
	MeetingStatusScheduled = "Scheduled"
	MeetingStatusCompleted = "Completed"
	MeetingStatusCancelled = "Cancelled"
	MeetingStatusNoShow    = "No Show"
)

// Task statuses.
const (
	TaskStatusOpen       = "Open"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"
	TaskStatusOnHold     = "On Hold"
	TaskStatusDone       = "Done"
	TaskStatusCancelled  = "Cancelled"
)

// DateLayout and TimeLayout are the at-rest formats of meeting and task dates.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Contact struct {
	Scope
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Stage         string    `json:"stage,omitempty"`
	ProjectID     string    `json:"project_id,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Source        string    `json:"source,omitempty"`
	Status        string    `json:"status"`
	Important     bool      `json:"important"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Meeting struct {
	Scope
	ID          string `json:"id"`
	ContactName string `json:"contact_name"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
}

type Task struct {
	Scope
	ID          string `json:"id"`
	Task        string `json:"task"`
	ContactName string `json:"contact_name,omitempty"`
	Due         string `json:"due"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
}

// NewID returns a time-sortable identifier for a new record.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
