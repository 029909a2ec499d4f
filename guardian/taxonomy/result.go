package taxonomy

import (
	"github.com/wagoodman/go-progress"

	"github.com/guardian-sec/guardian/internal/log"
)

// Result summarizes a taxonomy import. Warnings hold every cross reference that could not be resolved; they never
// fail the import.
type Result struct {
	ViewsSeeded        bool
	WeaknessesCreated  int
	WeaknessesExisting int
	CategoriesCreated  int
	CategoriesExisting int
	LeavesCreated      int
	LeavesUpdated      int
	Warnings           []string

	monitor *importMonitor
}

type importMonitor struct {
	stage         *progress.AtomicStage
	stageProgress *progress.Manual
	weaknesses    *progress.Manual
	categories    *progress.Manual
	leaves        *progress.Manual
	warnings      *progress.Manual
}

func (r *Result) recordWeakness(created bool) {
	if created {
		r.WeaknessesCreated++
	} else {
		r.WeaknessesExisting++
	}
	if r.monitor != nil {
		r.monitor.weaknesses.Increment()
	}
}

func (r *Result) recordCategory(created bool) {
	if created {
		r.CategoriesCreated++
	} else {
		r.CategoriesExisting++
	}
	if r.monitor != nil {
		r.monitor.categories.Increment()
	}
}

func (r *Result) recordLeaf(created bool) {
	if created {
		r.LeavesCreated++
	} else {
		r.LeavesUpdated++
	}
	if r.monitor != nil {
		r.monitor.leaves.Increment()
	}
}

func (r *Result) warn(message string, fields ...interface{}) {
	log.WithFields(fields...).Warn(message)
	r.Warnings = append(r.Warnings, message)
	if r.monitor != nil {
		r.monitor.warnings.Increment()
	}
}
