package executor

import "fmt"

type unknownSkillError struct{ skill string }

func (e unknownSkillError) Error() string { return fmt.Sprintf("no executor registered for skill %q", e.skill) }

func errUnknownSkill(skill string) error { return unknownSkillError{skill} }

type timeoutError struct{ skill string }

func (e timeoutError) Error() string {
	return fmt.Sprintf("executor for skill %q exceeded %s timeout", e.skill, CallTimeout)
}

func errTimeout(skill string) error { return timeoutError{skill} }
