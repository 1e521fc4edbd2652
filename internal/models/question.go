package models

// Question is one entry of the static question bank. Questions are read once at startup
// and never mutated.
type Question struct {
	ID          int    `json:"id" yaml:"id" validate:"required"`
	Question    string `json:"question" yaml:"question" validate:"required"`
	ModelAnswer string `json:"model_answer" yaml:"model_answer" validate:"required"`
}
