package cmd

import (
	"github.com/AlecAivazis/survey/v2"
)

// Prompter asks the user for input (allows mocking in tests)
type Prompter interface {
	Input(message, defaultValue string) (string, error)
	Password(message string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Password(message string) (string, error) {
	result := ""
	prompt := &survey.Password{
		Message: message,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}
