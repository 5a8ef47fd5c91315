// Package dialogs provides application dialogs.
package dialogs

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"expo-floorplan/internal/exhibition"
)

// StallEditDialog edits a new or existing stall. The dialog stays open and
// shows the message when saving fails.
type StallEditDialog struct {
	stall  exhibition.Stall
	schema *exhibition.Schema
	isNew  bool
	window fyne.Window
	dlg    *dialog.CustomDialog

	// Base fields
	numberEntry    *widget.Entry
	nameEntry      *widget.Entry
	categorySelect *widget.Select
	segmentSelect  *widget.Select
	contactEntry   *widget.Entry
	imageEntry     *widget.Entry
	descEntry      *widget.Entry

	// Schema fields, keyed by descriptor key
	fieldEntries map[string]*widget.Entry

	errorLabel *widget.Label

	onSave   func(exhibition.Stall) error
	onDelete func() error
}

// NewStallEditDialog creates a stall editor. onDelete may be nil, in which
// case no delete button is offered.
func NewStallEditDialog(st exhibition.Stall, isNew bool, schema *exhibition.Schema, window fyne.Window,
	onSave func(exhibition.Stall) error, onDelete func() error) *StallEditDialog {
	if schema == nil {
		schema = exhibition.DefaultSchema()
	}
	return &StallEditDialog{
		stall:    *st.Clone(),
		schema:   schema,
		isNew:    isNew,
		window:   window,
		onSave:   onSave,
		onDelete: onDelete,
	}
}

// Show displays the dialog.
func (d *StallEditDialog) Show() {
	title := "Edit Stall"
	if d.isNew {
		title = "Add Stall"
	}
	d.dlg = dialog.NewCustomWithoutButtons(title, d.createContent(), d.window)

	buttons := []fyne.CanvasObject{widget.NewButton("Cancel", d.dlg.Hide)}
	if !d.isNew && d.onDelete != nil {
		del := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), d.confirmDelete)
		del.Importance = widget.DangerImportance
		buttons = append(buttons, del)
	}
	save := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), d.save)
	save.Importance = widget.HighImportance
	buttons = append(buttons, save)
	d.dlg.SetButtons(buttons)

	d.dlg.Resize(fyne.NewSize(420, 520))
	d.dlg.Show()
}

func (d *StallEditDialog) createContent() fyne.CanvasObject {
	d.errorLabel = widget.NewLabel("")
	d.errorLabel.Importance = widget.DangerImportance
	d.errorLabel.Wrapping = fyne.TextWrapWord
	d.errorLabel.Hide()

	var form *widget.Form
	if d.schema.ShowBaseFields() {
		form = d.baseForm()
	} else {
		form = d.schemaForm()
	}
	return container.NewVBox(form, d.errorLabel)
}

func (d *StallEditDialog) baseForm() *widget.Form {
	st := d.stall

	d.numberEntry = widget.NewEntry()
	d.numberEntry.SetPlaceHolder("e.g. A-12")
	d.numberEntry.SetText(st.Number)

	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetPlaceHolder(exhibition.DefaultStallName)
	d.nameEntry.SetText(st.Name)

	d.categorySelect = widget.NewSelect(exhibition.Categories, nil)
	d.categorySelect.SetSelected(orDefault(st.Category, exhibition.DefaultCategory))

	d.segmentSelect = widget.NewSelect(exhibition.Segments, nil)
	d.segmentSelect.SetSelected(orDefault(st.Segment, exhibition.DefaultSegment))

	d.contactEntry = widget.NewEntry()
	d.contactEntry.SetText(st.Contact)

	d.imageEntry = widget.NewEntry()
	d.imageEntry.SetPlaceHolder("https://... or data:image/...")
	d.imageEntry.SetText(st.Image)

	d.descEntry = widget.NewMultiLineEntry()
	d.descEntry.SetText(st.Description)
	d.descEntry.SetMinRowsVisible(3)

	return widget.NewForm(
		widget.NewFormItem("Stall Number", d.numberEntry),
		widget.NewFormItem("Name", d.nameEntry),
		widget.NewFormItem("Category", d.categorySelect),
		widget.NewFormItem("Segment", d.segmentSelect),
		widget.NewFormItem("Contact", d.contactEntry),
		widget.NewFormItem("Image", d.imageEntry),
		widget.NewFormItem("Description", d.descEntry),
	)
}

func (d *StallEditDialog) schemaForm() *widget.Form {
	d.fieldEntries = make(map[string]*widget.Entry, len(d.schema.Fields))
	form := widget.NewForm()
	for _, f := range d.schema.Fields {
		var e *widget.Entry
		if f.Type == exhibition.FieldTextarea {
			e = widget.NewMultiLineEntry()
			e.SetMinRowsVisible(3)
		} else {
			e = widget.NewEntry()
		}
		e.SetPlaceHolder(f.Placeholder)
		e.SetText(d.stall.Field(f.Key))
		d.fieldEntries[f.Key] = e

		label := f.Label
		if f.Required {
			label += " *"
		}
		form.Append(label, e)
	}
	return form
}

// applyChanges builds the edited stall from the form. Parse errors are
// returned per field.
func (d *StallEditDialog) applyChanges() (exhibition.Stall, exhibition.FieldErrors) {
	st := *d.stall.Clone()
	if d.schema.ShowBaseFields() {
		st.Number = d.numberEntry.Text
		st.Name = d.nameEntry.Text
		st.Category = d.categorySelect.Selected
		st.Segment = d.segmentSelect.Selected
		st.Contact = strings.TrimSpace(d.contactEntry.Text)
		st.Image = strings.TrimSpace(d.imageEntry.Text)
		st.Description = strings.TrimSpace(d.descEntry.Text)
		return st, nil
	}

	raw := make(map[string]string, len(d.fieldEntries))
	for key, e := range d.fieldEntries {
		raw[key] = e.Text
	}
	if errs := d.schema.Apply(&st, raw); len(errs) > 0 {
		return st, errs
	}
	return st, nil
}

func (d *StallEditDialog) save() {
	st, errs := d.applyChanges()
	if len(errs) > 0 {
		d.showError(errs.Error())
		return
	}
	if d.onSave != nil {
		if err := d.onSave(st); err != nil {
			d.showError(exhibition.UserMessage(err))
			return
		}
	}
	d.dlg.Hide()
}

func (d *StallEditDialog) confirmDelete() {
	label := d.stall.Number
	if label == "" {
		label = d.stall.Name
	}
	ConfirmDelete("Stall", label, d.window, func() {
		if err := d.onDelete(); err != nil {
			d.showError(exhibition.UserMessage(err))
			return
		}
		d.dlg.Hide()
	})
}

func (d *StallEditDialog) showError(msg string) {
	d.errorLabel.SetText(msg)
	d.errorLabel.Show()
}

// ErrorText returns the message currently shown, or "".
func (d *StallEditDialog) ErrorText() string {
	if d.errorLabel == nil || !d.errorLabel.Visible() {
		return ""
	}
	return d.errorLabel.Text
}

// ConfirmDelete asks before deleting the named item.
func ConfirmDelete(kind, name string, window fyne.Window, onConfirm func()) {
	msg := "Delete " + strings.ToLower(kind) + " " + strconv.Quote(name) + "?"
	if kind != "Stall" {
		msg += " Everything inside it is deleted too."
	}
	dialog.ShowConfirm("Delete "+kind, msg, func(ok bool) {
		if ok {
			onConfirm()
		}
	}, window)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
