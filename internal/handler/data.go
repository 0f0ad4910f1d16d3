package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/repository"
	"github.com/fleetshare/fleetshare/internal/service"
)

// DataHandler serves the bulk import and snapshot endpoints.  Snapshots
// are whole-store JSON blobs persisted to MySQL; import reads the
// line-oriented record format from the request body.
type DataHandler struct {
	Store     *repository.Store
	Snapshots *repository.SnapshotRepo
	Importer  *service.Importer
}

func NewDataHandler(store *repository.Store, snapshots *repository.SnapshotRepo, importer *service.Importer) *DataHandler {
	return &DataHandler{Store: store, Snapshots: snapshots, Importer: importer}
}

// Import loads entity and rental records from a text/plain body.  Bad
// records are skipped and reported; the batch never aborts.  Imported
// accounts get the password from ?password= so operators can hand out a
// known initial credential.
func (h *DataHandler) Import(c echo.Context) error {
	password := c.QueryParam("password")
	if password == "" {
		password = "changeme"
	}
	report, err := h.Importer.Run(c.Request().Body, password)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

// SnapshotSave serializes the whole store and persists it.
func (h *DataHandler) SnapshotSave(c echo.Context) error {
	if h.Snapshots == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "snapshot storage unavailable"})
	}
	state, err := h.Store.MarshalSnapshot()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "serialize state failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Snapshots.Save(ctx, state, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save snapshot failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"snapshot_id": id, "bytes": len(state)})
}

// SnapshotLoad replaces the whole store state with the most recent
// persisted snapshot.
func (h *DataHandler) SnapshotLoad(c echo.Context) error {
	if h.Snapshots == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "snapshot storage unavailable"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	state, err := h.Snapshots.LoadLatest(ctx)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Store.RestoreFromJSON(state); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restore state failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"entities": h.Store.Size()})
}
