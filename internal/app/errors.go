package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyExtractedText = errors.New("no text could be extracted from the syllabus")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrNoSyllabus         = errors.New("no syllabus has been uploaded")
)
