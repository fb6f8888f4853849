package attendance

import "errors"

var (
	ErrAlreadyCheckedIn      = errors.New("attendance record already exists for this day")
	ErrNoCheckInFound        = errors.New("no check-in found for this day")
	ErrAlreadyCheckedOut     = errors.New("check-out already recorded for this day")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time is before check-in time")
	ErrInvalidStatus         = errors.New("invalid attendance status")
	ErrRecordNotFound        = errors.New("attendance record not found")
)
