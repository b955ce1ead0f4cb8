package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/deskrun/internal/ipc"
)

// createForm collects a new window. Fields stay strings until submit.
type createForm struct {
	form *huh.Form

	label   string
	title   string
	content string
	source  string
	width   string
	height  string
	center  bool
}

const (
	sourceURL  = "url"
	sourceHTML = "html"
	sourceNone = "none"
)

func newCreateForm(width int) *createForm {
	c := &createForm{source: sourceNone, width: "800", height: "600", center: true}

	w := width - 4
	if w < 40 {
		w = 40
	}
	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("label").
				Title("Label").
				Description("Unique window name").
				Validate(validateLabel).
				Value(&c.label),
			huh.NewInput().
				Key("title").
				Title("Title").
				Description("Defaults to the label").
				Value(&c.title),
			huh.NewSelect[string]().
				Key("source").
				Title("Content").
				Options(
					huh.NewOption("none", sourceNone),
					huh.NewOption("url", sourceURL),
					huh.NewOption("inline html", sourceHTML),
				).
				Value(&c.source),
			huh.NewInput().
				Key("content").
				Title("URL or HTML").
				Value(&c.content),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("width").
				Title("Width").
				Validate(validateSize).
				Value(&c.width),
			huh.NewInput().
				Key("height").
				Title("Height").
				Validate(validateSize).
				Value(&c.height),
			huh.NewConfirm().
				Key("center").
				Title("Center on monitor?").
				Value(&c.center),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)
	return c
}

func validateLabel(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("label is required")
	}
	return nil
}

func validateSize(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

// payload converts the form values into a create request.
func (c *createForm) payload() (ipc.CreateWindowPayload, error) {
	p := ipc.CreateWindowPayload{
		Label:  strings.TrimSpace(c.label),
		Title:  strings.TrimSpace(c.title),
		Center: c.center,
	}
	if err := validateLabel(p.Label); err != nil {
		return p, err
	}
	content := strings.TrimSpace(c.content)
	switch c.source {
	case sourceURL:
		p.URL = content
	case sourceHTML:
		p.HTML = content
	}
	if c.source != sourceNone && content == "" {
		return p, fmt.Errorf("%s content is empty", c.source)
	}

	var err error
	if p.Width, err = parseSize(c.width); err != nil {
		return p, fmt.Errorf("width: %w", err)
	}
	if p.Height, err = parseSize(c.height); err != nil {
		return p, fmt.Errorf("height: %w", err)
	}
	if (p.Width == 0) != (p.Height == 0) {
		return p, fmt.Errorf("width and height must be set together")
	}
	return p, nil
}

func parseSize(s string) (float64, error) {
	if err := validateSize(s); err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
