package gormadapter

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guardian-sec/guardian/internal/log"
)

var _ logger.Interface = (*logAdapter)(nil)

type logAdapter struct {
	debug         bool
	slowThreshold time.Duration
}

func newLogger(debug bool, slowThreshold time.Duration) logger.Interface {
	return &logAdapter{
		debug:         debug,
		slowThreshold: slowThreshold,
	}
}

func (l *logAdapter) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *logAdapter) Info(_ context.Context, fmt string, v ...interface{}) {
	if l.debug {
		log.Infof("gorm: "+fmt, v...)
	}
}

func (l *logAdapter) Warn(_ context.Context, fmt string, v ...interface{}) {
	log.Warnf("gorm: "+fmt, v...)
}

func (l *logAdapter) Error(_ context.Context, fmt string, v ...interface{}) {
	log.Errorf("gorm: "+fmt, v...)
}

func (l *logAdapter) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		// callers decide whether a failed statement is fatal, so this is only interesting while debugging
		if l.debug {
			sql, rows := fc()
			log.WithFields("sql", sql, "rows", rows, "elapsed", elapsed, "error", err).Debug("gorm: statement failed")
		}
	case l.slowThreshold != 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		log.WithFields("sql", sql, "rows", rows, "elapsed", elapsed).Warn("gorm: slow query")
	case l.debug:
		sql, rows := fc()
		log.WithFields("sql", sql, "rows", rows, "elapsed", elapsed).Trace("gorm: statement")
	}
}
