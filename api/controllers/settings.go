package controllers

import (
	"net/http"
	"strings"

	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/api/validators"
	"github.com/irmandades/ghala-backend/internal/permissions"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

func RoleDefinitionList(gate permissions.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		definitions, err := gate.ListDefinitions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, definitions)
	}
}

type roleDefinitionRequest struct {
	ManageEvents      bool `json:"manage_events"`
	ManageMembers     bool `json:"manage_members"`
	ManageInventory   bool `json:"manage_inventory"`
	ManageFinance     bool `json:"manage_finance"`
	ManageSettings    bool `json:"manage_settings"`
	ViewSensitiveData bool `json:"view_sensitive_data"`
}

// RoleDefinitionUpdate rewrites the capability flags for one role.
func RoleDefinitionUpdate(gate permissions.Gate, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := enums.ParseMemberRole(strings.TrimSpace(pathString(r, "role")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		var body roleDefinitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		definition, err := gate.UpdateDefinition(r.Context(), models.RoleDefinition{
			Role:              role,
			ManageEvents:      body.ManageEvents,
			ManageMembers:     body.ManageMembers,
			ManageInventory:   body.ManageInventory,
			ManageFinance:     body.ManageFinance,
			ManageSettings:    body.ManageSettings,
			ViewSensitiveData: body.ViewSensitiveData,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "roleDefinitions", string(definition.Role), realtime.ActionUpdated)
		responses.WriteSuccess(w, definition)
	}
}
