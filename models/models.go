package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User model. Teachers get a login account provisioned alongside their
// Teacher record; admins are created through the register endpoint.
type User struct {
	BaseModel
	Username            string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password            string `json:"-" gorm:"size:255;not null"`
	Role                string `json:"role" gorm:"size:50;not null;default:'teacher';type:enum('admin','teacher')"` // admin, teacher
	Active              bool   `json:"active" gorm:"default:true"`
	ForceChangePassword bool   `json:"force_change_password" gorm:"default:false"`
}

// Teacher model. Availability holds the raw JSON array of "Day-HH:MM"
// tokens the teacher marked as teachable; an absent or empty array means
// the teacher never restricted their hours.
type Teacher struct {
	BaseModel
	Name         string `json:"name" gorm:"size:200;not null;uniqueIndex"`
	DocumentID   string `json:"document_id" gorm:"size:50"`
	Color        string `json:"color" gorm:"size:20;default:'#0d9488'"`
	Availability JSON   `json:"availability" gorm:"type:json"`
	UserID       *uint  `json:"user_id"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Subject model
type Subject struct {
	BaseModel
	Name     string `json:"name" gorm:"size:200;not null;uniqueIndex"`
	ColorHex string `json:"color_hex" gorm:"size:20;default:'#0d9488'"`
}

// CourseGroup model: one class of students ("3º B"). StudentCount is the
// lower bound a room's capacity must satisfy.
type CourseGroup struct {
	BaseModel
	Year         string `json:"year" gorm:"size:50;not null;uniqueIndex:idx_group_year_division"`
	Division     string `json:"division" gorm:"size:50;not null;uniqueIndex:idx_group_year_division"`
	StudentCount int    `json:"student_count" gorm:"not null;default:30"`
}

// DisplayName returns the label used in grids and export sheets.
func (g *CourseGroup) DisplayName() string {
	return fmt.Sprintf("%s %s", g.Year, g.Division)
}

// Room model. Type is a free-form tag ("Normal", "Laboratorio", ...)
// matched against Requirement.RequiredRoomType.
type Room struct {
	BaseModel
	Name     string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Type     string `json:"type" gorm:"size:100;not null;default:'Normal'"`
	Capacity int    `json:"capacity" gorm:"not null;default:30"`
}

// Requirement model: a weekly teaching obligation the generator must place.
// A nil TeacherID makes the requirement unschedulable and is reported as
// such rather than matched against arbitrary teachers.
type Requirement struct {
	BaseModel
	CourseGroupID    uint   `json:"course_group_id" gorm:"not null"`
	SubjectID        uint   `json:"subject_id" gorm:"not null"`
	TeacherID        *uint  `json:"teacher_id"`
	WeeklyHours      int    `json:"weekly_hours" gorm:"not null"`
	RequiredRoomType string `json:"required_room_type" gorm:"size:100"`
	PreferredRoomID  *uint  `json:"preferred_room_id"`

	// Relationships
	CourseGroup   CourseGroup `json:"course_group,omitempty" gorm:"foreignKey:CourseGroupID"`
	Subject       Subject     `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Teacher       *Teacher    `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	PreferredRoom *Room       `json:"preferred_room,omitempty" gorm:"foreignKey:PreferredRoomID"`
}

// Assignment model: one committed weekly session. StartTime is the period
// start label ("07:40"); PeriodLabel is the derived range ("07:40 a 08:20")
// kept denormalized for grids and export.
type Assignment struct {
	BaseModel
	Day           string `json:"day" gorm:"size:20;not null;index:idx_assignment_slot"`
	StartTime     string `json:"start_time" gorm:"size:10;not null;index:idx_assignment_slot"`
	PeriodLabel   string `json:"period_label" gorm:"size:30;not null"`
	CourseGroupID uint   `json:"course_group_id" gorm:"not null;index"`
	SubjectID     uint   `json:"subject_id" gorm:"not null"`
	TeacherID     *uint  `json:"teacher_id" gorm:"index"`
	RoomID        *uint  `json:"room_id"`

	// Relationships
	CourseGroup CourseGroup `json:"course_group,omitempty" gorm:"foreignKey:CourseGroupID"`
	Subject     Subject     `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Teacher     *Teacher    `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Room        *Room       `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

// SchoolSetting is a key/value store for school-wide configuration:
// timetable preferences (avoid slots), institution name/address/logo.
type SchoolSetting struct {
	BaseModel
	Key       string `json:"key" gorm:"size:100;not null;uniqueIndex"`
	ValueJSON JSON   `json:"value_json" gorm:"type:json"`
}

// Setting keys
const (
	SettingTimetablePreferences = "timetable_preferences"
	SettingInstitutionName      = "institution_name"
	SettingInstitutionAddress   = "institution_address"
	SettingInstitutionLogo      = "institution_logo"
)

// TimetablePreferences is the decoded value of SettingTimetablePreferences.
type TimetablePreferences struct {
	LunchSlots []string `json:"lunch_slots"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}

// TimetableArchive tracks weekly timetable snapshots uploaded to S3.
type TimetableArchive struct {
	BaseModel
	FileName        string `json:"file_name" gorm:"size:255;not null"`
	S3Key           string `json:"s3_key" gorm:"size:500;not null"`
	GroupCount      int    `json:"group_count" gorm:"not null"`
	AssignmentCount int    `json:"assignment_count" gorm:"not null"`
	FileSize        int64  `json:"file_size" gorm:"not null"`
	Status          string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error           string `json:"error" gorm:"type:text"`
}
