package server

import (
	"github.com/codegnosis/depspace/pkg/camera"
	"github.com/codegnosis/depspace/pkg/encode"
	apperrors "github.com/codegnosis/depspace/pkg/errors"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/layout"
	"github.com/codegnosis/depspace/pkg/model"
	"github.com/codegnosis/depspace/pkg/scene"
)

// actionRequest is the wire form of a scene action, shared by the REST
// endpoint and the websocket. Type selects the action; the remaining
// fields are read per type.
type actionRequest struct {
	Type string `json:"type"`

	Mode      string       `json:"mode,omitempty"`
	Mission   string       `json:"mission,omitempty"`
	Family    string       `json:"family,omitempty"`
	Node      string       `json:"node,omitempty"`
	Hide      bool         `json:"hide,omitempty"`
	ColorMode string       `json:"color_mode,omitempty"`
	Pose      *camera.Pose `json:"pose,omitempty"`
}

// decodeAction translates a wire action into a scene action, validating
// the payload up front so bad requests fail before they reach the loop.
func decodeAction(req actionRequest) (scene.Action, error) {
	switch req.Type {
	case "set_mode":
		mode, err := layout.ParseMode(req.Mode)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidMode, err, "parse mode")
		}
		return scene.SetMode{Mode: mode}, nil

	case "set_mission":
		m := filter.Mission(req.Mission)
		if !m.Valid() {
			return nil, apperrors.New(apperrors.ErrCodeInvalidMission, "unknown mission %q", req.Mission)
		}
		return scene.SetMission{Mission: m}, nil

	case "toggle_family":
		fam, err := parseFamily(req.Family)
		if err != nil {
			return nil, err
		}
		return scene.ToggleFamily{Family: fam}, nil

	case "solo_family":
		if req.Family == "" {
			return scene.SoloFamily{}, nil
		}
		fam, err := parseFamily(req.Family)
		if err != nil {
			return nil, err
		}
		return scene.SoloFamily{Family: &fam}, nil

	case "hide_external":
		return scene.SetHideExternal{Hide: req.Hide}, nil

	case "select_node":
		if err := apperrors.ValidateNodeID(req.Node); err != nil {
			return nil, err
		}
		return scene.SelectNode{ID: req.Node}, nil

	case "clear_selection":
		return scene.ClearSelection{}, nil

	case "set_color_mode":
		mode, err := encode.ParseColorMode(req.ColorMode)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidMode, err, "parse color mode")
		}
		return scene.SetColorMode{Mode: mode}, nil

	case "set_camera":
		if req.Pose == nil {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "set_camera requires a pose")
		}
		return scene.SetCameraPose{Pose: *req.Pose}, nil

	case "movement_settled":
		return scene.MovementSettled{}, nil

	case "restore_horizon":
		return scene.RestoreHorizon{}, nil

	case "reset_view":
		return scene.ResetView{}, nil

	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown action type %q", req.Type)
	}
}

func parseFamily(raw string) (model.Family, error) {
	var fam model.Family
	if err := fam.UnmarshalText([]byte(raw)); err != nil {
		return fam, apperrors.Wrap(apperrors.ErrCodeInvalidFamily, err, "parse family")
	}
	return fam, nil
}
