package api

import (
	"html/template"

	"fusion-demo/internal/application/usecases"
	"fusion-demo/internal/domain/valueobjects"
	"fusion-demo/model"
)

// presentState は Outcome を画面の表示要素に写す。
// ローダーは Loading、エラーは Failure、画像は Success のときだけ出る。
func presentState(output *usecases.SessionOutput) model.StateResponse {
	outcome := output.Outcome
	state := model.StateResponse{
		Success:     outcome.Kind() != valueobjects.OutcomeFailure,
		Outcome:     outcome.Kind().String(),
		Loading:     outcome.IsLoading(),
		Action:      output.Action.String(),
		Slots:       make([]model.SlotResponse, 0, len(output.Slots)),
		CanDispatch: output.CanDispatch(),
	}

	if dataURL, ok := outcome.ImageDataURL(); ok {
		image := &model.ImageResponse{DataURL: dataURL}
		if payload, err := valueobjects.ParseDataURL(dataURL); err == nil {
			image.MimeType = payload.MimeType()
		}
		state.Image = image
	}
	if message, ok := outcome.Message(); ok {
		state.Error = message
	}

	for _, slot := range output.Slots {
		resp := model.SlotResponse{
			Slot:  int(slot.Slot),
			Error: slot.Error,
		}
		if slot.Payload != nil {
			resp.Filled = true
			resp.MimeType = slot.Payload.MimeType()
		}
		state.Slots = append(state.Slots, resp)
	}
	return state
}

type actionOption struct {
	Value    string
	Selected bool
}

type pageView struct {
	State   model.StateResponse
	Actions []actionOption
	Accept  string
	// data: URL は html/template の既定では除去されるので template.URL で渡す
	Previews    [2]template.URL
	ResultImage template.URL
}

func newPageView(output *usecases.SessionOutput) pageView {
	view := pageView{
		State:  presentState(output),
		Accept: acceptedImageTypes,
	}
	for _, action := range valueobjects.SupportedActions() {
		view.Actions = append(view.Actions, actionOption{
			Value:    action.String(),
			Selected: action == output.Action,
		})
	}
	for i, slot := range output.Slots {
		if slot.Payload != nil {
			view.Previews[i] = template.URL(slot.Payload.DataURL())
		}
	}
	if view.State.Image != nil {
		view.ResultImage = template.URL(view.State.Image.DataURL)
	}
	return view
}
