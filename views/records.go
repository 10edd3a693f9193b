package views

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"axiapac.com/timetrack/model"
	v1 "axiapac.com/timetrack/timetrack/v1"
	"axiapac.com/timetrack/utils"
)

const (
	msgLoadFailed     = "Failed to fetch attendance records"
	msgDownloadFailed = "Download failed. Please try again."
	msgMissingFileURL = "Download failed. File URL not received."
	msgDownloaded     = "Download completed"
)

type fetchFunc func(ctx context.Context, day time.Time) ([]model.AttendanceRecord, error)

// dateScoped caches the records of the selected date. A response for a date
// that is no longer selected is dropped.
type dateScoped struct {
	Flash

	fetch fetchFunc
	loc   *time.Location

	mu         sync.RWMutex
	date       time.Time
	generation uint64
	records    []model.AttendanceRecord
	loaded     bool

	loading atomic.Bool
	seen    atomic.Int64
	busy    atomic.Bool
}

func (d *dateScoped) init(fetch fetchFunc, loc *time.Location, now time.Time) {
	if loc == nil {
		loc = time.Local
	}
	d.fetch, d.loc = fetch, loc
	d.date = utils.StartOfDay(now.In(loc))
}

func (d *dateScoped) Date() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.date
}

// SetDate selects a day; the caller loads it.
func (d *dateScoped) SetDate(day time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.date = utils.StartOfDay(day.In(d.loc))
	d.generation++
	d.records, d.loaded = nil, false
}

func (d *dateScoped) Load(ctx context.Context) error {
	d.mu.RLock()
	day, gen := d.date, d.generation
	d.mu.RUnlock()

	d.loading.Store(true)
	defer d.loading.Store(false)

	records, err := d.fetch(ctx, day)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return err
	}
	if err != nil {
		d.SetError(v1.Message(err, msgLoadFailed))
		return err
	}
	d.records, d.loaded = records, true
	return nil
}

// Sync reloads when the refresh counter moved since the last sync.
func (d *dateScoped) Sync(ctx context.Context, refresh int64) error {
	if d.seen.Swap(refresh) == refresh && d.Loaded() {
		return nil
	}
	return d.Load(ctx)
}

func (d *dateScoped) Records() []model.AttendanceRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.AttendanceRecord(nil), d.records...)
}

func (d *dateScoped) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

func (d *dateScoped) Loading() bool {
	return d.loading.Load()
}

// Empty is a successful load that returned no rows; it is not an error.
func (d *dateScoped) Empty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded && len(d.records) == 0
}

// Reset forgets everything, used when the session is torn down.
func (d *dateScoped) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.records, d.loaded = nil, false
	d.Dismiss()
}

type requestFunc func(ctx context.Context, q v1.DownloadQuery) (*model.ExportArtifact, error)

func (d *dateScoped) download(ctx context.Context, api AttendanceAPI, request requestFunc, format model.ExportFormat, w io.Writer) (*model.ExportArtifact, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer d.busy.Store(false)

	d.Dismiss()
	artifact, err := request(ctx, v1.DownloadQuery{Format: format, SelectedDate: d.Date()})
	if err != nil {
		if v1.IsKind(err, v1.KindDecode) {
			d.SetError(msgMissingFileURL)
		} else {
			d.SetError(v1.Message(err, msgDownloadFailed))
		}
		return nil, err
	}

	if _, err := api.FetchExport(ctx, *artifact, w); err != nil {
		d.SetError(v1.Message(err, msgDownloadFailed))
		return artifact, err
	}
	d.SetSuccess(msgDownloaded)
	return artifact, nil
}
