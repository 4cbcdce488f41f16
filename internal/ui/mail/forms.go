package mail

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/cloudconsole/internal/backend/ses"
	"github.com/nhle/cloudconsole/internal/ui/form"
)

// emailFields backs the compose form.
type emailFields struct {
	to      string
	cc      string
	bcc     string
	replyTo string
	subject string
	body    string
	isHTML  bool
}

func (f *emailFields) reset() {
	*f = emailFields{isHTML: true}
}

func (f emailFields) options() ses.EmailOptions {
	return ses.EmailOptions{
		To:      ses.SplitAddresses(f.to),
		Subject: f.subject,
		Body:    f.body,
		IsHTML:  f.isHTML,
		Cc:      ses.SplitAddresses(f.cc),
		Bcc:     ses.SplitAddresses(f.bcc),
		ReplyTo: ses.SplitAddresses(f.replyTo),
	}
}

type bulkFields struct {
	recipients string
	subject    string
	body       string
	isHTML     bool
}

func (f *bulkFields) reset() {
	*f = bulkFields{isHTML: true}
}

type templateFields struct {
	name     string
	subject  string
	htmlBody string
	textBody string
}

func (f templateFields) template() ses.EmailTemplate {
	return ses.EmailTemplate{
		Name:     strings.TrimSpace(f.name),
		Subject:  f.subject,
		HTMLBody: f.htmlBody,
		TextBody: f.textBody,
	}
}

type templatedFields struct {
	template string
	to       string
	data     string
}

func (f *templatedFields) reset(template string) {
	*f = templatedFields{template: template, data: "{}"}
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email     emailFields
	bulk      bulkFields
	tpl       templateFields
	templated templatedFields
}

func newFormBindings() *formBindings {
	fb := &formBindings{}
	fb.email.reset()
	fb.bulk.reset()
	fb.templated.reset("")
	return fb
}

// addresses validates a separated address list. Blank input passes unless
// required is set.
func addresses(name string, required bool) func(string) error {
	return func(s string) error {
		list := ses.SplitAddresses(s)
		if len(list) == 0 {
			if required {
				return form.Required(name)("")
			}
			return nil
		}
		_, err := ses.ParseAddresses(list)
		return err
	}
}

func composeForm(width int, f *emailFields) *huh.Form {
	return form.New(width,
		huh.NewInput().
			Title("To").
			Description("Comma separated addresses").
			Value(&f.to).
			Validate(addresses("Recipient", true)),
		huh.NewInput().
			Title("Cc").
			Value(&f.cc).
			Validate(addresses("Cc", false)),
		huh.NewInput().
			Title("Bcc").
			Value(&f.bcc).
			Validate(addresses("Bcc", false)),
		huh.NewInput().
			Title("Reply-To").
			Value(&f.replyTo).
			Validate(addresses("Reply-To", false)),
		huh.NewInput().
			Title("Subject").
			Value(&f.subject).
			Validate(form.Required("Subject")),
		huh.NewText().
			Title("Body").
			Value(&f.body).
			Validate(form.Required("Body")),
		huh.NewConfirm().
			Title("HTML body?").
			Value(&f.isHTML),
	)
}

func bulkForm(width int, f *bulkFields) *huh.Form {
	return form.New(width,
		huh.NewText().
			Title("Recipients").
			Description("One per line or comma separated").
			Value(&f.recipients).
			Validate(addresses("Recipient", true)),
		huh.NewInput().
			Title("Subject").
			Value(&f.subject).
			Validate(form.Required("Subject")),
		huh.NewText().
			Title("Body").
			Value(&f.body).
			Validate(form.Required("Body")),
		huh.NewConfirm().
			Title("HTML body?").
			Value(&f.isHTML),
	)
}

// templateForm builds the create and edit forms. The name is fixed when
// editing.
func templateForm(width int, f *templateFields, editing bool) *huh.Form {
	var fields []huh.Field
	if editing {
		fields = append(fields, huh.NewNote().Title("Template").Description(f.name))
	} else {
		fields = append(fields,
			huh.NewInput().
				Title("Name").
				Value(&f.name).
				Validate(form.Required("Name")),
		)
	}

	fields = append(fields,
		huh.NewInput().
			Title("Subject").
			Description("May reference {{variables}}").
			Value(&f.subject).
			Validate(form.Required("Subject")),
		huh.NewText().
			Title("HTML body").
			Value(&f.htmlBody).
			Validate(form.Required("HTML body")),
		huh.NewText().
			Title("Text body").
			Description("Optional").
			Value(&f.textBody),
	)
	return form.New(width, fields...)
}

func templatedForm(width int, f *templatedFields) *huh.Form {
	return form.New(width,
		huh.NewNote().Title("Template").Description(f.template),
		huh.NewInput().
			Title("To").
			Value(&f.to).
			Validate(addresses("Recipient", true)),
		huh.NewText().
			Title("Template data").
			Description("JSON object with the template variables").
			Value(&f.data).
			Validate(form.Required("Template data")),
	)
}
