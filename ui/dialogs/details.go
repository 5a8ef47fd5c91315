package dialogs

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/recommend"
)

// Status labels shown for a stall.
const (
	StatusAvailable = "Available"
	StatusSold      = "Sold"
)

// RecommendFunc asks the recommendation collaborator about a stall.
type RecommendFunc func(ctx context.Context, st *exhibition.Stall) (string, error)

// StallDetailsDialog shows a stall to visitors and customers. Visitors can
// ask for recommendations; customers can purchase an available stall.
type StallDetailsDialog struct {
	stall  *exhibition.Stall
	schema *exhibition.Schema
	mode   exhibition.Mode
	window fyne.Window
	dlg    *dialog.CustomDialog

	statusLabel    *widget.Label
	recommendLabel *widget.Label
	recommendBtn   *widget.Button
	purchaseBtn    *widget.Button

	recommend  RecommendFunc
	onPurchase func(*exhibition.Stall) error

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStallDetailsDialog creates a details dialog. recommend and onPurchase
// may be nil to hide the corresponding action.
func NewStallDetailsDialog(st *exhibition.Stall, schema *exhibition.Schema, mode exhibition.Mode, window fyne.Window,
	recommendFn RecommendFunc, onPurchase func(*exhibition.Stall) error) *StallDetailsDialog {
	ctx, cancel := context.WithCancel(context.Background())
	return &StallDetailsDialog{
		stall:      st.Clone(),
		schema:     schema,
		mode:       mode,
		window:     window,
		recommend:  recommendFn,
		onPurchase: onPurchase,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Show displays the dialog.
func (d *StallDetailsDialog) Show() {
	title := "Stall " + d.stall.Number
	d.dlg = dialog.NewCustom(title, "Close", d.createContent(), d.window)
	d.dlg.SetOnClosed(d.cancel)
	d.dlg.Resize(fyne.NewSize(420, 420))
	d.dlg.Show()
}

// DetailRows lists the label and value pairs shown for a stall. Empty
// values are skipped.
func DetailRows(st *exhibition.Stall, schema *exhibition.Schema) [][2]string {
	var rows [][2]string
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, [2]string{label, value})
		}
	}
	if schema.ShowBaseFields() {
		add("Stall Number", st.Number)
		add("Name", st.Name)
		add("Category", st.Category)
		add("Segment", st.Segment)
		add("Contact", st.Contact)
		add("Description", st.Description)
	} else {
		add("Stall Number", st.Number)
		for _, f := range schema.Fields {
			add(f.Label, st.Field(f.Key))
		}
	}
	return rows
}

func statusText(st *exhibition.Stall) string {
	if st.Purchased {
		return StatusSold
	}
	return StatusAvailable
}

func (d *StallDetailsDialog) createContent() fyne.CanvasObject {
	form := widget.NewForm()
	for _, row := range DetailRows(d.stall, d.schema) {
		value := widget.NewLabel(row[1])
		value.Wrapping = fyne.TextWrapWord
		form.Append(row[0], value)
	}
	d.statusLabel = widget.NewLabel(statusText(d.stall))
	form.Append("Status", d.statusLabel)

	box := container.NewVBox(form)

	if d.mode == exhibition.ModeCustomer && d.onPurchase != nil {
		d.purchaseBtn = widget.NewButton("Purchase Stall", d.confirmPurchase)
		d.purchaseBtn.Importance = widget.HighImportance
		if d.stall.Purchased {
			d.purchaseBtn.Disable()
		}
		box.Add(d.purchaseBtn)
	}

	if d.mode == exhibition.ModeVisitor && d.recommend != nil {
		d.recommendLabel = widget.NewLabel("")
		d.recommendLabel.Wrapping = fyne.TextWrapWord
		d.recommendBtn = widget.NewButton("Get Recommendations", d.runRecommend)
		box.Add(widget.NewCard("Recommendations", "", container.NewVBox(d.recommendBtn, d.recommendLabel)))
	}
	return box
}

func (d *StallDetailsDialog) confirmPurchase() {
	dialog.ShowConfirm("Purchase Stall", "Purchase stall "+d.stall.Number+"?", func(ok bool) {
		if ok {
			d.purchase()
		}
	}, d.window)
}

func (d *StallDetailsDialog) purchase() {
	if err := d.onPurchase(d.stall); err != nil {
		dialog.ShowError(errors.New(exhibition.UserMessage(err)), d.window)
		return
	}
	d.stall.Purchased = true
	d.statusLabel.SetText(StatusSold)
	d.purchaseBtn.Disable()
}

// runRecommend queries the collaborator in the background. A failure only
// changes the message shown.
func (d *StallDetailsDialog) runRecommend() {
	d.recommendBtn.Disable()
	d.recommendLabel.SetText("Loading recommendations...")
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)
		text, err := d.recommend(d.ctx, d.stall)
		if d.ctx.Err() != nil {
			return
		}
		if err != nil {
			text = recommend.UnavailableMessage
		}
		d.recommendLabel.SetText(text)
		d.recommendBtn.Enable()
	}()
}

// RecommendationText returns the recommendation message shown, or "".
func (d *StallDetailsDialog) RecommendationText() string {
	if d.recommendLabel == nil {
		return ""
	}
	return d.recommendLabel.Text
}

// wait blocks until a running recommendation finishes.
func (d *StallDetailsDialog) wait() {
	if d.done != nil {
		<-d.done
	}
}
