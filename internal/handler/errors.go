package handler

import (
	"errors"
	"net/http"

	"github.com/BST1120/mapper2/internal/board"
	"github.com/BST1120/mapper2/internal/service"
	"github.com/BST1120/mapper2/internal/store"
)

// writeBoardError maps board and store errors onto HTTP statuses. Conflicts
// come back as 409 so the client re-reads and retries; the lock gate uses 423.
func writeBoardError(w http.ResponseWriter, err error) {
	var verr board.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "someone else just moved this card, refresh and retry")
	case errors.Is(err, board.ErrEditLocked):
		writeError(w, http.StatusLocked, err.Error())
	case errors.Is(err, board.ErrNoShift):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, board.ErrBreakTooLate), errors.Is(err, board.ErrNoSlotAvailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
