package polls

import (
	"strings"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"
	"github.com/CROWNARC/animex-tweet-verse/internal/validation"
)

const (
	minOptions = 2
	maxOptions = 4
)

// OptionDraft is one choice under construction. Image bytes are validated on
// attach and uploaded by the caller at submission time.
type OptionDraft struct {
	Title            string
	Image            []byte
	ImageContentType string
}

// Draft accumulates a poll before submission. A fresh draft starts at the
// minimum of two empty options.
type Draft struct {
	title   string
	options []OptionDraft
	endsAt  *time.Time
}

func NewDraft() *Draft {
	return &Draft{options: make([]OptionDraft, minOptions)}
}

func (d *Draft) SetTitle(title string) {
	d.title = title
}

func (d *Draft) SetEndsAt(at *time.Time) {
	d.endsAt = at
}

// AddOption appends an empty option, refused at the maximum of four.
func (d *Draft) AddOption() error {
	if len(d.options) >= maxOptions {
		return models.NewValidationError("A poll can have at most 4 options")
	}
	d.options = append(d.options, OptionDraft{})
	return nil
}

// RemoveOption drops the option at index, refused at the minimum of two.
func (d *Draft) RemoveOption(index int) error {
	if len(d.options) <= minOptions {
		return models.NewValidationError("A poll needs at least 2 options")
	}
	if index < 0 || index >= len(d.options) {
		return models.NewValidationError("No such option")
	}
	d.options = append(d.options[:index], d.options[index+1:]...)
	return nil
}

func (d *Draft) SetOptionTitle(index int, title string) error {
	if index < 0 || index >= len(d.options) {
		return models.NewValidationError("No such option")
	}
	d.options[index].Title = title
	return nil
}

// SetOptionImage attaches an image to an option. The image is validated here,
// before anything leaves the client; an invalid image changes nothing.
func (d *Draft) SetOptionImage(index int, data []byte) error {
	if index < 0 || index >= len(d.options) {
		return models.NewValidationError("No such option")
	}
	if err := validation.ValidateImage(data); err != nil {
		return models.NewValidationError(err.Error())
	}
	d.options[index].Image = data
	d.options[index].ImageContentType = validation.ImageContentType(data)
	return nil
}

// Options returns the current option drafts.
func (d *Draft) Options() []OptionDraft {
	return append([]OptionDraft(nil), d.options...)
}

// Empty reports whether the draft carries no content at all: a blank title
// and every option title blank.
func (d *Draft) Empty() bool {
	if strings.TrimSpace(d.title) != "" {
		return false
	}
	for _, opt := range d.options {
		if strings.TrimSpace(opt.Title) != "" {
			return false
		}
	}
	return true
}

// Build turns the draft into a poll row, or nil when the draft is empty.
// An all-blank draft means "no poll", never an empty poll object.
// Option order is fixed here and never changes afterwards.
func (d *Draft) Build() *models.Poll {
	if d.Empty() {
		return nil
	}

	poll := &models.Poll{
		Title:  strings.TrimSpace(d.title),
		EndsAt: d.endsAt,
	}
	for i, opt := range d.options {
		poll.Options = append(poll.Options, models.PollOption{
			Title:       strings.TrimSpace(opt.Title),
			OptionOrder: i,
		})
	}
	return poll
}
