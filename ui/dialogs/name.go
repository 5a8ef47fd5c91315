package dialogs

import (
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"expo-floorplan/internal/exhibition"
)

// ShowNameDialog asks for a venue or floor name. onOK receives the
// trimmed name; an error it returns is shown to the user.
func ShowNameDialog(title, initial string, window fyne.Window, onOK func(name string) error) {
	entry := widget.NewEntry()
	entry.SetText(initial)
	entry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("name cannot be empty")
		}
		return nil
	}

	dlg := dialog.NewForm(title, "OK", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			if err := onOK(strings.TrimSpace(entry.Text)); err != nil {
				dialog.ShowError(errors.New(exhibition.UserMessage(err)), window)
			}
		}, window)
	dlg.Resize(fyne.NewSize(360, 160))
	dlg.Show()
	window.Canvas().Focus(entry)
}
