package webui

import (
	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/session"
)

// Binder exposes Go functions to the page
type Binder interface {
	Bind(name string, f interface{}) error
}

// FormInput is the form as the page submits it
type FormInput struct {
	Source          string `json:"source"`
	Format          string `json:"format"`
	Mode            string `json:"mode"`
	Compress        bool   `json:"compress"`
	IncludeMarkdown bool   `json:"include_markdown"`
}

// Options converts the form to submission options
func (f FormInput) Options() ingest.Options {
	return ingest.Options{
		Source:          f.Source,
		Format:          ingest.Format(f.Format),
		Mode:            ingest.Mode(f.Mode),
		Compress:        f.Compress,
		IncludeMarkdown: f.IncludeMarkdown,
	}
}

// Bind registers the controller's handlers under the names the page calls.
// onReady runs once the page script has loaded.
func Bind(b Binder, ctrl *session.Controller, onReady func()) error {
	bindings := []struct {
		name string
		fn   interface{}
	}{
		{"sourceChanged", func(text, mode string) {
			ctrl.SourceChanged(text, ingest.Mode(mode))
		}},
		{"submit", func(form FormInput) error {
			return userError(ctrl.Submit(form.Options()))
		}},
		{"includeMarkdown", func() error {
			return userError(ctrl.IncludeMarkdownAndResubmit())
		}},
		{"copyOutput", func() error {
			return userError(ctrl.CopyOutput())
		}},
		{"downloadOutput", func() error {
			return userError(ctrl.DownloadOutput())
		}},
		{"downloadMarkdown", func() error {
			return userError(ctrl.DownloadMarkdown())
		}},
		{"ready", func() {
			if onReady != nil {
				onReady()
			}
		}},
	}

	for _, binding := range bindings {
		if err := b.Bind(binding.name, binding.fn); err != nil {
			return errors.Wrapf(err, "failed to bind %s", binding.name)
		}
	}
	return nil
}

// userError keeps busy and no-results rejections out of the page console
func userError(err error) error {
	if err == nil || errors.IsAny(err, errors.ErrBusy, errors.ErrNoResults) {
		return nil
	}
	return errors.New(errors.UserMessage(err))
}
