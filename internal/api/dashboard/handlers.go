// internal/api/dashboard/handlers.go
package dashboard

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	"github.com/codr1/Opsboard/internal/api/authz"
	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/health"
	hometempl "github.com/codr1/Opsboard/internal/templates/components/home"
)

type dashboardLister interface {
	All() []*health.Dashboard
}

type shipmentSources interface {
	Sources() []config.ShipmentSource
}

var (
	appName   string
	registry  dashboardLister
	shipments shipmentSources
	initOnce  sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(name string, r dashboardLister, s shipmentSources) {
	if r == nil {
		log.Warn().Msg("InitHandlers called with nil registry; home page will have no dashboards")
	}
	initOnce.Do(func() {
		appName = name
		registry = r
		shipments = s
	})
}

// homeData lists one tab per configured dashboard and shipment source.
func homeData(user *authz.AuthUser) hometempl.HomeData {
	data := hometempl.HomeData{AppName: appName}
	if user != nil {
		data.Email = user.Email
	}
	if registry != nil {
		for _, d := range registry.All() {
			data.Dashboards = append(data.Dashboards, hometempl.Tab{Key: d.Key(), Label: d.Label()})
		}
	}
	if shipments != nil {
		for _, src := range shipments.Sources() {
			data.Shipments = append(data.Shipments, hometempl.Tab{Key: src.Key, Label: src.Label})
		}
	}
	return data
}

// HandleHomePage renders the signed-in shell for GET /home.
func HandleHomePage(w http.ResponseWriter, r *http.Request) {
	user := authz.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	apiutil.RenderHTMLComponent(r.Context(), w, hometempl.Home(homeData(user)), nil,
		"Failed to render home page", "Failed to render page")
}
