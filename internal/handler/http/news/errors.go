package news

import (
	"context"
	"errors"
	"net/http"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/handler/http/requestid"
	"glbaguni/internal/handler/http/respond"
	newsUC "glbaguni/internal/usecase/news"
)

// writePipelineError maps a usecase error onto the wire.
//
// Validation problems answer 400 and keep their message. A pipeline that
// ran but found nothing answers 404 with the user-facing message and the
// request ID so the caller can quote it. Deadline overruns answer 504.
// Everything else is an internal error and gets masked.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var fatal newsUC.FatalError
	if errors.As(err, &fatal) {
		respond.JSON(w, http.StatusNotFound, map[string]string{
			"error":      fatal.UserMessage(),
			"request_id": requestid.FromContext(r.Context()),
		})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		respond.JSON(w, http.StatusGatewayTimeout, map[string]string{
			"error":      "request timeout",
			"request_id": requestid.FromContext(r.Context()),
		})
		return
	}

	respond.SafeError(w, http.StatusInternalServerError, err)
}
