package controllers

import (
	"net/http"

	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/internal/snapshot"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

// SnapshotExport dumps every dashboard table in the client export shape.
func SnapshotExport(assembler *snapshot.Assembler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if assembler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "snapshot assembler unavailable"))
			return
		}

		snap, err := assembler.Assemble(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}
