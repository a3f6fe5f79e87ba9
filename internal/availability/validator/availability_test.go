package validator

import (
	"testing"

	"gleam/pkg/logger"
	"gleam/pkg/model"
)

func testValidator() *AvailabilityValidator {
	log := logger.New(logger.Config{Level: "info", Format: logger.JSON, Service: "test"})
	return NewAvailabilityValidator(log)
}

func validDay() *model.DayAvailability {
	return &model.DayAvailability{
		Date:    "2024-01-10",
		DayName: "Wednesday",
		Slots: []model.TimeSlot{
			{ID: "s1", Time: "08:00 AM", Available: true},
			{ID: "s2", Time: "08:30 AM", Available: false},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.DayAvailability)
		wantErr bool
	}{
		{"valid", func(d *model.DayAvailability) {}, false},
		{"missing date", func(d *model.DayAvailability) { d.Date = "" }, true},
		{"non-iso date", func(d *model.DayAvailability) { d.Date = "01-10-2024" }, true},
		{"impossible date", func(d *model.DayAvailability) { d.Date = "2024-02-31" }, true},
		{"missing day name", func(d *model.DayAvailability) { d.DayName = "" }, true},
		{"nil slots", func(d *model.DayAvailability) { d.Slots = nil }, true},
		{"24h slot time", func(d *model.DayAvailability) { d.Slots[0].Time = "14:00" }, true},
		{"missing slot id", func(d *model.DayAvailability) { d.Slots[0].ID = "" }, true},
		{"duplicate slot id", func(d *model.DayAvailability) { d.Slots[1].ID = "s1" }, true},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := validDay()
			tt.mutate(day)
			err := v.Validate(day)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
