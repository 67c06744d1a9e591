package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/logger"
	"github.com/rebeliceyang/lazytable/internal/models"
)

// Postgres reads a table through a pgx connection pool
type Postgres struct {
	ConnString string // URL without the table parameter
	Schema     string
	Table      string
	Config     config.SourceConfig
	Passwords  PasswordLookup // nil uses the OS keyring

	key string
}

// NewPostgres parses a postgres:// URL with a table=schema.table parameter
func NewPostgres(target string, cfg config.SourceConfig) (*Postgres, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	name, err := tableParam(u)
	if err != nil {
		return nil, err
	}
	schema, table := splitTable(name, "public")

	host := u.Host
	if user := u.User.Username(); user != "" {
		host = user + "@" + host
	}

	return &Postgres{
		ConnString: u.String(),
		Schema:     schema,
		Table:      table,
		Config:     cfg,
		key:        fmt.Sprintf("postgres://%s%s/%s.%s", host, u.Path, schema, table),
	}, nil
}

// Key returns the URL without credentials plus the table
func (p *Postgres) Key() string {
	return p.key
}

// SelectSQL builds the SELECT used to read the table
func (p *Postgres) SelectSQL() (string, []any, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("*").
		From(pgx.Identifier{p.Schema, p.Table}.Sanitize())
	if p.Config.RowLimit > 0 {
		builder = builder.Limit(uint64(p.Config.RowLimit))
	}
	return builder.ToSql()
}

// Load connects, reads the table and closes the pool
func (p *Postgres) Load(ctx context.Context) (*models.Table, error) {
	log := logger.FromContext(ctx).WithComponent("source")

	if timeout := p.Config.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pool, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	query, args, err := p.SelectSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	start := time.Now()
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query table data: %w", err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columns[i] = fd.Name
	}

	var data [][]string
	var nulls [][2]int
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			if IsNull(v) {
				nulls = append(nulls, [2]int{len(data), i})
			}
			record[i] = FormatValue(v)
		}
		data = append(data, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table data: %w", err)
	}

	log.Infow("loaded PostgreSQL table",
		"table", p.Schema+"."+p.Table,
		"columns", len(columns),
		"rows", len(data),
		"duration", time.Since(start),
	)
	return newTable(columns, data, nulls), nil
}

func (p *Postgres) connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(p.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	connConfig := poolConfig.ConnConfig
	if connConfig.Password == "" {
		password, err := LookupPassword(p.Passwords, connConfig.User, connConfig.Host)
		if err != nil {
			logger.FromContext(ctx).Warnw("keyring lookup failed", "error", err)
		}
		connConfig.Password = password
	}

	poolConfig.MaxConns = int32(max(p.Config.PoolSize, 1))
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
