package handler

import (
	"time"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/service"
)

type analyticsProvider interface {
	Overview(limit int) (service.SiteOverview, error)
	FirmStatsMap(firmIDs []uint) (map[uint]*db.FirmStatistic, error)
	RecordFirmView(firmID uint, visitorID string, now time.Time) (*db.FirmStatistic, error)
}
