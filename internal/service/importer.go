package service

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
	"github.com/fleetshare/fleetshare/internal/utils"
)

// Record keywords accepted by the bulk importer.  One record per line,
// keyword prefix followed by comma-separated fields:
//
//	Owner:name,nif,email,address
//	Client:name,nif,email,address,x,y
//	Transport:class,brand,registration,ownerNIF,avgVelocity,priceKm,rate,capacity,x,y
//	Rental:clientNIF,destX,destY,class,preference
//	Rating:id,value            (numeric id rates a client by NIF,
//	                            otherwise a transport by registration)
//
// Malformed or unresolvable records are skipped and reported; the batch
// never aborts on a bad line.
const (
	recOwner     = "Owner"
	recClient    = "Client"
	recTransport = "Transport"
	recRental    = "Rental"
	recRating    = "Rating"
)

// SkippedRecord explains why one line of an import batch was rejected.
type SkippedRecord struct {
	Line   int    `json:"line"`
	Record string `json:"record"`
	Reason string `json:"reason"`
}

// ImportReport summarizes an import batch.
type ImportReport struct {
	Lines    int             `json:"lines"`
	Imported int             `json:"imported"`
	Skipped  []SkippedRecord `json:"skipped"`
}

// Importer loads entity and rental records from a line-oriented text
// format into the store.  Imported accounts carry a placeholder
// password hashed once per batch; rentals are applied as already
// accepted, with refills authorized, since the log records completed
// trips.
type Importer struct {
	store      *repository.Store
	bcryptCost int
	now        func() time.Time
}

func NewImporter(store *repository.Store, bcryptCost int) *Importer {
	return &Importer{store: store, bcryptCost: bcryptCost, now: time.Now}
}

// Run reads records from r until EOF and returns the batch report.  The
// error return covers only reader failures; per-record problems end up
// in the report.
func (im *Importer) Run(r io.Reader, defaultPassword string) (ImportReport, error) {
	hash, err := utils.HashPassword(defaultPassword, im.bcryptCost)
	if err != nil {
		return ImportReport{}, fmt.Errorf("hash default password: %w", err)
	}

	report := ImportReport{Skipped: []SkippedRecord{}}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		report.Lines++

		keyword, rest, found := strings.Cut(line, ":")
		if !found {
			report.skip(lineNo, line, "missing record keyword")
			continue
		}
		fields := strings.Split(rest, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		var recErr error
		switch keyword {
		case recOwner:
			recErr = im.importOwner(fields, hash)
		case recClient:
			recErr = im.importClient(fields, hash)
		case recTransport:
			recErr = im.importTransport(fields)
		case recRental:
			recErr = im.importRental(fields)
		case recRating:
			recErr = im.importRating(fields)
		default:
			recErr = fmt.Errorf("unknown record keyword %q", keyword)
		}

		if recErr != nil {
			report.skip(lineNo, line, recErr.Error())
			continue
		}
		report.Imported++
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read import data: %w", err)
	}
	return report, nil
}

func (r *ImportReport) skip(line int, record, reason string) {
	r.Skipped = append(r.Skipped, SkippedRecord{Line: line, Record: record, Reason: reason})
}

func (im *Importer) importOwner(f []string, passwordHash string) error {
	if len(f) != 4 {
		return fmt.Errorf("owner record needs 4 fields, got %d", len(f))
	}
	nif, err := strconv.Atoi(f[1])
	if err != nil {
		return fmt.Errorf("bad nif %q", f[1])
	}
	o := &model.Owner{User: model.User{
		Name:         f[0],
		NIF:          nif,
		Email:        f[2],
		Address:      f[3],
		PasswordHash: passwordHash,
		CreatedAt:    im.now(),
		Rating:       model.DefaultRating,
	}}
	return im.store.AddOwner(o)
}

func (im *Importer) importClient(f []string, passwordHash string) error {
	if len(f) != 6 {
		return fmt.Errorf("client record needs 6 fields, got %d", len(f))
	}
	nif, err := strconv.Atoi(f[1])
	if err != nil {
		return fmt.Errorf("bad nif %q", f[1])
	}
	x, err := strconv.ParseFloat(f[4], 64)
	if err != nil {
		return fmt.Errorf("bad x coordinate %q", f[4])
	}
	y, err := strconv.ParseFloat(f[5], 64)
	if err != nil {
		return fmt.Errorf("bad y coordinate %q", f[5])
	}
	c := &model.Client{
		User: model.User{
			Name:         f[0],
			NIF:          nif,
			Email:        f[2],
			Address:      f[3],
			PasswordHash: passwordHash,
			CreatedAt:    im.now(),
			Rating:       model.DefaultRating,
		},
		Position: model.Point{X: x, Y: y},
	}
	return im.store.AddClient(c)
}

func (im *Importer) importTransport(f []string) error {
	if len(f) != 10 {
		return fmt.Errorf("transport record needs 10 fields, got %d", len(f))
	}
	ownerNIF, err := strconv.Atoi(f[3])
	if err != nil {
		return fmt.Errorf("bad owner nif %q", f[3])
	}
	nums := make([]float64, 6)
	for i, raw := range f[4:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("bad numeric field %q", raw)
		}
		nums[i] = v
	}
	owner, err := im.store.OwnerByNIF(ownerNIF)
	if err != nil {
		return fmt.Errorf("owner with nif %d not found", ownerNIF)
	}

	velocity, priceKm, rate, capacity := nums[0], nums[1], nums[2], nums[3]
	pos := model.Point{X: nums[4], Y: nums[5]}

	var t *model.Transport
	switch strings.ToUpper(f[0]) {
	case string(model.Conventional):
		t = model.NewConventional(f[1], f[2], ownerNIF, owner.Email, velocity, priceKm, rate, capacity, pos)
	case string(model.Hybrid):
		t = model.NewHybrid(f[1], f[2], ownerNIF, owner.Email, velocity, priceKm, rate, capacity, pos)
	default:
		return fmt.Errorf("unknown transport class %q", f[0])
	}
	return im.store.AddTransport(t)
}

// importRental replays a completed trip: the transport is selected with
// the recorded preference and the rental applied as if the owner had
// accepted with a refill authorized.
func (im *Importer) importRental(f []string) error {
	if len(f) != 5 {
		return fmt.Errorf("rental record needs 5 fields, got %d", len(f))
	}
	nif, err := strconv.Atoi(f[0])
	if err != nil {
		return fmt.Errorf("bad client nif %q", f[0])
	}
	x, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return fmt.Errorf("bad x coordinate %q", f[1])
	}
	y, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return fmt.Errorf("bad y coordinate %q", f[2])
	}
	c, err := im.store.ClientByNIF(nif)
	if err != nil {
		return fmt.Errorf("client with nif %d not found", nif)
	}

	now := im.now()
	destination := model.Point{X: x, Y: y}

	var candidates []*model.Transport
	switch strings.ToUpper(f[3]) {
	case string(model.Conventional):
		candidates = im.store.ConventionalTransports()
	case string(model.Hybrid):
		candidates = im.store.HybridTransports()
	default:
		return fmt.Errorf("unknown transport class %q", f[3])
	}

	var t *model.Transport
	switch f[4] {
	case PreferClosest:
		t, err = Closest(candidates, c.Position, now)
	case PreferCheapest:
		t, err = Cheapest(candidates, now)
	default:
		return fmt.Errorf("unknown selection preference %q", f[4])
	}
	if err != nil {
		return err
	}

	_, err = im.store.ApplyRental(c.Email, t.Registration, f[3], f[4], destination, true, now)
	return err
}

func (im *Importer) importRating(f []string) error {
	if len(f) != 2 {
		return fmt.Errorf("rating record needs 2 fields, got %d", len(f))
	}
	value, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return fmt.Errorf("bad rating value %q", f[1])
	}
	if !ratingValueValid(value) {
		return fmt.Errorf("rating %g out of range 0..100", value)
	}

	if nif, err := strconv.Atoi(f[0]); err == nil {
		c, err := im.store.ClientByNIF(nif)
		if err != nil {
			return fmt.Errorf("client with nif %d not found", nif)
		}
		return im.store.AddRatingToClient(c.Email, value)
	}
	return im.store.AddRatingToTransport(f[0], value)
}
