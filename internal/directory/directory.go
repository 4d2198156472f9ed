package directory

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"frontdesk-backend/pkg/models"
)

var (
	ErrInvalidPhone = errors.New("please enter a valid phone number")
	ErrInvalidCode  = errors.New("please enter a 4-digit code")
)

var codeRe = regexp.MustCompile(`^\d{4}$`)

//go:embed students.yaml
var studentsYAML []byte

// Directory is the demo roster of enrolled families. Verification is mocked:
// any 4-digit code is accepted and the phone number decides the outcome.
type Directory struct {
	byPhone map[string]models.ChildData
}

type Verification struct {
	UserType  models.UserType
	ChildData *models.ChildData
	Greeting  string
}

func Load() (*Directory, error) {
	return Parse(studentsYAML)
}

func Parse(data []byte) (*Directory, error) {
	raw := struct {
		Students []models.ChildData `yaml:"students"`
	}{}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing student directory: %w", err)
	}

	dir := &Directory{byPhone: make(map[string]models.ChildData, len(raw.Students))}
	for _, student := range raw.Students {
		phone := normalizePhone(student.ParentPhone)
		if phone == "" {
			return nil, fmt.Errorf("student %q has no parent phone", student.ChildName)
		}
		if _, exists := dir.byPhone[phone]; exists {
			return nil, fmt.Errorf("duplicate parent phone %s in student directory", student.ParentPhone)
		}
		dir.byPhone[phone] = student
	}

	return dir, nil
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (d *Directory) Lookup(phone string) (models.ChildData, bool) {
	child, ok := d.byPhone[normalizePhone(phone)]
	return child, ok
}

func (d *Directory) Verify(phone, code string) (Verification, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < 7 {
		return Verification{}, ErrInvalidPhone
	}
	if !codeRe.MatchString(code) {
		return Verification{}, ErrInvalidCode
	}

	child, ok := d.Lookup(phone)
	if !ok {
		return Verification{UserType: models.Prospective, Greeting: Greeting(nil)}, nil
	}

	return Verification{
		UserType:  models.LoggedIn,
		ChildData: &child,
		Greeting:  Greeting(&child),
	}, nil
}

// Greeting is the opening line shown above the chat.
func Greeting(child *models.ChildData) string {
	if child == nil {
		return "Welcome to Little Sprouts! I'm here to answer any questions about our school."
	}

	firstName := "there"
	if fields := strings.Fields(child.ParentName); len(fields) > 0 {
		firstName = fields[0]
	}

	return fmt.Sprintf("Hi %s! %s is having a %s morning! Currently: %s with %s.",
		firstName, child.ChildName, strings.ToLower(child.Mood), child.Status, child.Teacher)
}

