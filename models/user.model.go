package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
)

type Education string

const (
	EducationHighSchool Education = "HIGH_SCHOOL"
	EducationBachelors  Education = "BACHELORS"
	EducationMasters    Education = "MASTERS"
	EducationPhD        Education = "PHD"
)

func (e Education) Valid() bool {
	switch e {
	case EducationHighSchool, EducationBachelors, EducationMasters, EducationPhD:
		return true
	}
	return false
}

type User struct {
	Base
	Username   string      `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email      string      `json:"email" gorm:"uniqueIndex;size:254;not null"`
	FirstName  string      `json:"first_name" gorm:"size:150;default:''"`
	LastName   string      `json:"last_name" gorm:"size:150;default:''"`
	Password   string      `json:"-" gorm:"not null"`
	LastLogin  *time.Time  `json:"last_login"`
	Student    *Student    `json:"student,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Instructor *Instructor `json:"instructor,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Student is the learner profile. A user with this row is a student.
type Student struct {
	Base
	UserID         uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	BirthDate      *datatypes.Date `json:"birth_date"`
	Education      Education       `json:"education" gorm:"size:20"`
	PhoneNumber    string          `json:"phone_number" gorm:"size:255"`
	ProfilePicture string          `json:"profile_picture"`
}

// Instructor is the teaching profile. A user with this row is an instructor.
type Instructor struct {
	Base
	UserID         uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Bio            string    `json:"bio" gorm:"type:text"`
	Education      Education `json:"education" gorm:"size:20"`
	ProfilePicture string    `json:"profile_picture"`
}

// ResolveRole derives the role from the linked profile. Profiles must be preloaded.
func (u *User) ResolveRole() (Role, bool) {
	switch {
	case u.Instructor != nil:
		return RoleInstructor, true
	case u.Student != nil:
		return RoleStudent, true
	}
	return "", false
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
