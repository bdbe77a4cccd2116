package dto

import "github.com/noah-isme/tempo-schedule-api/internal/models"

// CreateInstructorRequest adds an instructor. ID is derived from the name when omitted.
type CreateInstructorRequest struct {
	ID                   string                `json:"id" validate:"omitempty,max=16,alphanum"`
	Name                 string                `json:"name" validate:"required,max=120"`
	Email                string                `json:"email" validate:"omitempty,email"`
	Phone                string                `json:"phone" validate:"omitempty,max=32"`
	ClassTypes           []string              `json:"classTypes" validate:"required,min=1,dive,catalog_class_type"`
	BlockSize            int                   `json:"blockSize" validate:"omitempty,min=1,max=30"`
	MinClasses           int                   `json:"minClasses" validate:"omitempty,min=0,max=210"`
	MaxClasses           int                   `json:"maxClasses" validate:"omitempty,min=1,max=210"`
	Availability         []string              `json:"availability" validate:"omitempty,dive,catalog_slot_key"`
	ClassTypePreferences map[string]string     `json:"classTypePreferences" validate:"omitempty,dive,keys,catalog_slot_key,endkeys,catalog_class_type"`
	Unavailability       models.Unavailability `json:"unavailability"`
}

// ToModel converts the request into an instructor record.
func (r CreateInstructorRequest) ToModel() models.Instructor {
	return models.Instructor{
		ID:                   r.ID,
		Name:                 r.Name,
		Email:                r.Email,
		Phone:                r.Phone,
		ClassTypes:           r.ClassTypes,
		BlockSize:            r.BlockSize,
		MinClasses:           r.MinClasses,
		MaxClasses:           r.MaxClasses,
		Availability:         r.Availability,
		ClassTypePreferences: r.ClassTypePreferences,
		Unavailability:       r.Unavailability,
	}
}

// UpdateInstructorRequest patches an instructor; omitted fields are left unchanged.
type UpdateInstructorRequest struct {
	Name                 *string                `json:"name" validate:"omitempty,max=120"`
	Email                *string                `json:"email" validate:"omitempty,email"`
	Phone                *string                `json:"phone" validate:"omitempty,max=32"`
	ClassTypes           *[]string              `json:"classTypes" validate:"omitempty,min=1,dive,catalog_class_type"`
	BlockSize            *int                   `json:"blockSize" validate:"omitempty,min=1,max=30"`
	MinClasses           *int                   `json:"minClasses" validate:"omitempty,min=0,max=210"`
	MaxClasses           *int                   `json:"maxClasses" validate:"omitempty,min=1,max=210"`
	Availability         *[]string              `json:"availability" validate:"omitempty,dive,catalog_slot_key"`
	ClassTypePreferences *map[string]string     `json:"classTypePreferences" validate:"omitempty,dive,keys,catalog_slot_key,endkeys,catalog_class_type"`
	Unavailability       *models.Unavailability `json:"unavailability"`
}

// ToPatch converts the request into a model patch.
func (r UpdateInstructorRequest) ToPatch() models.InstructorPatch {
	return models.InstructorPatch{
		Name:                 r.Name,
		Email:                r.Email,
		Phone:                r.Phone,
		ClassTypes:           r.ClassTypes,
		BlockSize:            r.BlockSize,
		MinClasses:           r.MinClasses,
		MaxClasses:           r.MaxClasses,
		Availability:         r.Availability,
		ClassTypePreferences: r.ClassTypePreferences,
		Unavailability:       r.Unavailability,
	}
}

// RegisterInstructorRequest is the self-service sign-up form. Availability is built from the
// preferred days crossed with the times of each selected range preset.
type RegisterInstructorRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	Email         string   `json:"email" validate:"required,email"`
	Phone         string   `json:"phone" validate:"omitempty,max=32"`
	ClassTypes    []string `json:"classTypes" validate:"required,min=1,dive,catalog_class_type"`
	PreferredDays []string `json:"preferredDays" validate:"required,min=1,dive,catalog_day"`
	TimeRanges    []string `json:"timeRanges" validate:"required,min=1,dive,time_range_preset"`
	MaxClasses    int      `json:"maxClasses" validate:"omitempty,min=1,max=210"`
}

// SetAvailabilityRequest toggles one slot in an instructor's availability.
type SetAvailabilityRequest struct {
	Day       string `json:"day" validate:"required,catalog_day"`
	Time      string `json:"time" validate:"required,catalog_time"`
	Available *bool  `json:"available" validate:"required"`
}

// InstructorClassesResponse lists the classes taught by an instructor.
type InstructorClassesResponse struct {
	InstructorID string                   `json:"instructorId"`
	Classes      []models.InstructorClass `json:"classes"`
	Total        int                      `json:"total"`
}

// AdminLoginRequest exchanges the admin password for a bearer token.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminLoginResponse carries the issued token.
type AdminLoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}
