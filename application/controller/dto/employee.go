package dto

type CreateEmployeeDTO struct {
	FirstName  string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName   string  `json:"lastName" validate:"required,min=1,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}

// EnrollSampleDTO submits one face sample for progressive enrollment.
type EnrollSampleDTO struct {
	EmployeeID string       `json:"employeeID" validate:"required"`
	Angle      string       `json:"angle" validate:"required,angle_tag"`
	Quality    float64      `json:"quality" validate:"gte=0,lte=1"`
	RefImage   *string      `json:"refImage"`
	Frame      PushFrameDTO `json:"frame"`
}
