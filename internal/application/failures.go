package application

import (
	"errors"
	"net/http"
	"strings"
)

// Notice texts shared by the list screens.
const (
	MsgNetworkError   = "Network error. Please try again later."
	MsgGenericError   = "An error occurred. Please try again later."
	MsgSearchFailed   = "Error fetching search results."
	MsgNoMatches      = "No matching records found."
	MsgSearchFetched  = "Search results fetched successfully!"
	MsgDeleted        = "Successfully Deleted"
	MsgExportFailed   = "Unable to build the spreadsheet. Please try again later."
	MsgUserNotFound   = "User record not found"
	MsgUserToggleFail = "Error toggling User status"
	MsgUserEnabled    = "User enabled successfully"
	MsgUserDisabled   = "User disabled successfully"
	MsgNoMeetingData  = "No meeting data available to export."
	MsgNoUserData     = "No user data available to export."
)

// AsStatusError extracts the HTTP status carried by a backend rejection.
func AsStatusError(err error) (StatusError, bool) {
	var sErr StatusError
	if errors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}

// failureNotice maps a failed list action to the text shown to the operator.
// 400, 401, 404, and 500 surface the server's own message; other statuses
// get the generic text and a missing response gets the network text.
func failureNotice(err error) string {
	if sErr, ok := AsStatusError(err); ok {
		switch code := sErr.StatusCode(); code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError:
			if msg := strings.TrimSpace(sErr.ServerMessage()); msg != "" {
				return msg
			}
			return statusFallbackText(code)
		default:
			return MsgGenericError
		}
	}
	if errors.Is(err, ErrTransport) {
		return MsgNetworkError
	}
	return MsgGenericError
}

func searchFailureNotice(err error) string {
	if sErr, ok := AsStatusError(err); ok {
		if msg := strings.TrimSpace(sErr.ServerMessage()); msg != "" {
			return msg
		}
	}
	return MsgSearchFailed
}

func statusFallbackText(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was rejected by the server."
	case http.StatusUnauthorized:
		return "Access denied. Invalid token."
	case http.StatusNotFound:
		return "Record not found."
	default:
		return "Internal server error."
	}
}
