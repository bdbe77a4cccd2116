package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
)

// registerCatalogValidations installs the tags used by the schedule and instructor DTOs.
func registerCatalogValidations(v *validator.Validate) {
	_ = v.RegisterValidation("catalog_day", func(fl validator.FieldLevel) bool {
		_, ok := models.DayIndex(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("catalog_class_type", func(fl validator.FieldLevel) bool {
		_, ok := models.ClassTypeIndex(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("catalog_time", func(fl validator.FieldLevel) bool {
		_, ok := models.TimeIndex(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("catalog_slot_key", func(fl validator.FieldLevel) bool {
		day, slotTime, ok := models.ParseSlotKey(fl.Field().String())
		if !ok {
			return false
		}
		_, okDay := models.DayIndex(day)
		_, okTime := models.TimeIndex(slotTime)
		return okDay && okTime
	})
	_ = v.RegisterValidation("time_range_preset", func(fl validator.FieldLevel) bool {
		return len(models.ExpandTimeRangePreset(fl.Field().String())) > 0
	})
}
