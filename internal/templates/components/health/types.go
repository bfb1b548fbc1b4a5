package health

import (
	"net/url"

	domain "github.com/codr1/Opsboard/internal/health"
)

// BasePath returns the htmx endpoint root for one dashboard.
func BasePath(key string) string {
	return "/api/v1/health/" + url.PathEscape(key)
}

func panelID(key string) string {
	return "health-" + key
}

func panelTarget(key string) string {
	return "#" + panelID(key)
}

func action(key, path string) string {
	return BasePath(key) + "/" + path
}

func sortAction(key, column string) string {
	return action(key, "sort?column="+url.QueryEscape(column))
}

func sortArrow(dir domain.SortDirection) string {
	switch dir {
	case domain.SortAsc:
		return " ↑"
	case domain.SortDesc:
		return " ↓"
	default:
		return ""
	}
}

func dayClass(d domain.DayCell) string {
	switch {
	case d.Selected:
		return "day btn btn-primary"
	case d.Today:
		return "day btn btn-outline-primary"
	default:
		return "day btn btn-light"
	}
}

func alertClass(kind domain.StatusKind) string {
	switch kind {
	case domain.StatusSuccess:
		return "alert-success"
	case domain.StatusError:
		return "alert-danger"
	default:
		return "alert-info"
	}
}
