package pixelproc

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"

	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
)

// ConnectToDatabase opens the camera database. For the sqlite driver dbname
// is the database file and the other arguments are ignored.
func ConnectToDatabase(driver string, user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	switch driver {
	case "mysql":
		port := "3306"
		dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
		return sqlx.Connect("mysql", dbURI)
	case "sqlite":
		return sqlx.Connect("sqlite", dbname)
	}
	return nil, fmt.Errorf("unknown database driver %q", driver)
}

type PixelGeometryEntry struct {
	Channel int     `db:"Channel"`
	X       float64 `db:"X"`
	Y       float64 `db:"Y"`
}

type PixelNeighbourEntry struct {
	Channel   int `db:"Channel"`
	Neighbour int `db:"Neighbour"`
}

type ChannelStatusEntry struct {
	Channel           int     `db:"Channel"`
	Dead              bool    `db:"Dead"`
	Pedestal          float64 `db:"Pedestal"`
	PedRMS            float64 `db:"PedRMS"`
	PedVar            float64 `db:"PedVar"`
	LowGainMultiplier float64 `db:"LowGainMultiplier"`
}

// LoadCamera reads the geometry, neighbour lists and channel status valid for
// the run. Channels must be numbered contiguously from zero.
func LoadCamera(db *sqlx.DB, telescope int, run int) (*Camera, error) {
	wrap := func(err error) error {
		return &ErrLoadCamera{Telescope: telescope, Run: run, Err: err}
	}

	geometry, err := getGeometryFromDB(db, telescope, run)
	if err != nil {
		return nil, wrap(err)
	}
	n := len(geometry)
	if n == 0 {
		return nil, wrap(fmt.Errorf("no pixel geometry"))
	}
	x := make([]float64, n)
	y := make([]float64, n)
	for i, entry := range geometry {
		if entry.Channel != i {
			return nil, wrap(fmt.Errorf("channel %d found at position %d", entry.Channel, i))
		}
		x[i], y[i] = entry.X, entry.Y
	}

	pairs, err := getNeighboursFromDB(db, telescope, run)
	if err != nil {
		return nil, wrap(err)
	}
	neighbours := make([][]int, n)
	for _, pair := range pairs {
		if pair.Channel < 0 || pair.Channel >= n {
			return nil, wrap(fmt.Errorf("%w: neighbour list of channel %d", cleaning.ErrNeighbourOutOfRange, pair.Channel))
		}
		neighbours[pair.Channel] = append(neighbours[pair.Channel], pair.Neighbour)
	}
	graph, err := cleaning.NewNeighbourGraph(neighbours, x, y, configuration.MaxNeighbours)
	if err != nil {
		return nil, wrap(err)
	}

	camera := &Camera{
		Telescope:         telescope,
		Run:               run,
		Graph:             graph,
		Dead:              make([]bool, n),
		Pedestal:          make([]float64, n),
		PedestalRMS:       make([]float64, n),
		PedVar:            make([]float64, n),
		LowGainMultiplier: make([]float64, n),
	}
	status, err := getChannelStatusFromDB(db, telescope, run)
	if err != nil {
		return nil, wrap(err)
	}
	seen := make([]bool, n)
	for _, entry := range status {
		if entry.Channel < 0 || entry.Channel >= n {
			return nil, wrap(fmt.Errorf("status for unknown channel %d", entry.Channel))
		}
		i := entry.Channel
		seen[i] = true
		camera.Dead[i] = entry.Dead
		camera.Pedestal[i] = entry.Pedestal
		camera.PedestalRMS[i] = entry.PedRMS
		camera.PedVar[i] = entry.PedVar
		camera.LowGainMultiplier[i] = entry.LowGainMultiplier
	}
	// channels without status are not read out
	for i := range seen {
		if !seen[i] {
			camera.Dead[i] = true
		}
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Camera of telescope %d loaded: %d channels, %d neighbour pairs", telescope, n, len(pairs))
		logger.Info(message, "database")
	}
	return camera, nil
}

func getGeometryFromDB(db *sqlx.DB, telescope int, run int) ([]PixelGeometryEntry, error) {
	query := "SELECT Channel, X, Y FROM PixelGeometry WHERE Telescope = %d and MinRun <= %d and MaxRun >= %d ORDER BY Channel"
	query = fmt.Sprintf(query, telescope, run, run)
	if configuration.Verbosity > 0 {
		logger.Info("Reading pixel geometry from database", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	var entries []PixelGeometryEntry
	for rows.Next() {
		result := PixelGeometryEntry{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		entries = append(entries, result)
	}
	return entries, rows.Err()
}

func getNeighboursFromDB(db *sqlx.DB, telescope int, run int) ([]PixelNeighbourEntry, error) {
	query := "SELECT Channel, Neighbour FROM PixelNeighbours WHERE Telescope = %d and MinRun <= %d and MaxRun >= %d ORDER BY Channel, Neighbour"
	query = fmt.Sprintf(query, telescope, run, run)
	if configuration.Verbosity > 0 {
		logger.Info("Reading pixel neighbours from database", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	var entries []PixelNeighbourEntry
	if err := db.Select(&entries, query); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	return entries, nil
}

func getChannelStatusFromDB(db *sqlx.DB, telescope int, run int) ([]ChannelStatusEntry, error) {
	query := "SELECT Channel, Dead, Pedestal, PedRMS, PedVar, LowGainMultiplier FROM ChannelStatus WHERE Telescope = %d and MinRun <= %d and MaxRun >= %d ORDER BY Channel"
	query = fmt.Sprintf(query, telescope, run, run)
	if configuration.Verbosity > 0 {
		logger.Info("Reading channel status from database", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	var entries []ChannelStatusEntry
	if err := db.Select(&entries, query); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	return entries, nil
}

// CameraSchema creates the camera tables read by LoadCamera.
const CameraSchema = `
CREATE TABLE IF NOT EXISTS PixelGeometry (
	Telescope INTEGER NOT NULL,
	MinRun INTEGER NOT NULL,
	MaxRun INTEGER NOT NULL,
	Channel INTEGER NOT NULL,
	X DOUBLE NOT NULL,
	Y DOUBLE NOT NULL
);
CREATE TABLE IF NOT EXISTS PixelNeighbours (
	Telescope INTEGER NOT NULL,
	MinRun INTEGER NOT NULL,
	MaxRun INTEGER NOT NULL,
	Channel INTEGER NOT NULL,
	Neighbour INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ChannelStatus (
	Telescope INTEGER NOT NULL,
	MinRun INTEGER NOT NULL,
	MaxRun INTEGER NOT NULL,
	Channel INTEGER NOT NULL,
	Dead BOOLEAN NOT NULL,
	Pedestal DOUBLE NOT NULL,
	PedRMS DOUBLE NOT NULL,
	PedVar DOUBLE NOT NULL,
	LowGainMultiplier DOUBLE NOT NULL
);
`

// StoreCamera writes the camera into the tables of CameraSchema, valid for
// runs minRun to maxRun.
func StoreCamera(db *sqlx.DB, camera *Camera, minRun int, maxRun int) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := 0; i < camera.NChannels(); i++ {
		x, y := camera.Graph.Position(i)
		_, err := tx.Exec("INSERT INTO PixelGeometry (Telescope, MinRun, MaxRun, Channel, X, Y) VALUES (?, ?, ?, ?, ?, ?)",
			camera.Telescope, minRun, maxRun, i, x, y)
		if err != nil {
			return fmt.Errorf("error inserting geometry of channel %d: %w", i, err)
		}
		for _, k := range camera.Graph.Neighbours(i) {
			_, err := tx.Exec("INSERT INTO PixelNeighbours (Telescope, MinRun, MaxRun, Channel, Neighbour) VALUES (?, ?, ?, ?, ?)",
				camera.Telescope, minRun, maxRun, i, k)
			if err != nil {
				return fmt.Errorf("error inserting neighbours of channel %d: %w", i, err)
			}
		}
		_, err = tx.NamedExec(`INSERT INTO ChannelStatus (Telescope, MinRun, MaxRun, Channel, Dead, Pedestal, PedRMS, PedVar, LowGainMultiplier)
			VALUES (:Telescope, :MinRun, :MaxRun, :Channel, :Dead, :Pedestal, :PedRMS, :PedVar, :LowGainMultiplier)`,
			map[string]any{
				"Telescope":         camera.Telescope,
				"MinRun":            minRun,
				"MaxRun":            maxRun,
				"Channel":           i,
				"Dead":              camera.Dead[i],
				"Pedestal":          camera.Pedestal[i],
				"PedRMS":            camera.PedestalRMS[i],
				"PedVar":            camera.PedVar[i],
				"LowGainMultiplier": camera.LowGainMultiplier[i],
			})
		if err != nil {
			return fmt.Errorf("error inserting status of channel %d: %w", i, err)
		}
	}
	return tx.Commit()
}
