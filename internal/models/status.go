package models

// Status values are owned by the backend. Each job family gets its own
// closed set; strings outside the set are kept verbatim and treated as
// still in flight.

// ResearchStatus is the lifecycle state of a research job.
type ResearchStatus string

const (
	ResearchPending   ResearchStatus = "pending"
	ResearchSearching ResearchStatus = "searching"
	ResearchAnalyzing ResearchStatus = "analyzing"
	ResearchCompleted ResearchStatus = "completed"
	ResearchFailed    ResearchStatus = "failed"
	ResearchError     ResearchStatus = "error"
)

// Known reports whether s is one of the documented research states.
func (s ResearchStatus) Known() bool {
	switch s {
	case ResearchPending, ResearchSearching, ResearchAnalyzing,
		ResearchCompleted, ResearchFailed, ResearchError:
		return true
	}
	return false
}

// IsTerminal reports whether no further backend change is expected.
func (s ResearchStatus) IsTerminal() bool {
	return s == ResearchCompleted || s == ResearchFailed || s == ResearchError
}

// ShouldPoll reports whether a client should keep refreshing a job in state s.
func (s ResearchStatus) ShouldPoll() bool { return !s.IsTerminal() }

// Failed reports whether s is a terminal failure.
func (s ResearchStatus) Failed() bool { return s == ResearchFailed || s == ResearchError }

// CurationStatus is the lifecycle state of a curation job.
type CurationStatus string

const (
	CurationPending         CurationStatus = "pending"
	CurationGeneratingBrief CurationStatus = "generating_brief"
	CurationCompleted       CurationStatus = "completed"
	CurationError           CurationStatus = "error"
)

// Known reports whether s is one of the documented curation states.
func (s CurationStatus) Known() bool {
	switch s {
	case CurationPending, CurationGeneratingBrief, CurationCompleted, CurationError:
		return true
	}
	return false
}

// IsTerminal reports whether no further backend change is expected.
func (s CurationStatus) IsTerminal() bool {
	return s == CurationCompleted || s == CurationError
}

// ShouldPoll reports whether a client should keep refreshing a job in state s.
func (s CurationStatus) ShouldPoll() bool { return !s.IsTerminal() }

// Failed reports whether s is a terminal failure.
func (s CurationStatus) Failed() bool { return s == CurationError }

// ProductionStatus is the lifecycle state of a production job.
type ProductionStatus string

const (
	ProductionPending    ProductionStatus = "pending"
	ProductionQueued     ProductionStatus = "queued"
	ProductionProcessing ProductionStatus = "processing"
	ProductionCompleted  ProductionStatus = "completed"
	ProductionFailed     ProductionStatus = "failed"
	ProductionError      ProductionStatus = "error"
)

// Known reports whether s is one of the documented production states.
func (s ProductionStatus) Known() bool {
	switch s {
	case ProductionPending, ProductionQueued, ProductionProcessing,
		ProductionCompleted, ProductionFailed, ProductionError:
		return true
	}
	return false
}

// IsTerminal reports whether no further backend change is expected.
func (s ProductionStatus) IsTerminal() bool {
	return s == ProductionCompleted || s == ProductionFailed || s == ProductionError
}

// ShouldPoll reports whether a client should keep refreshing a job in state s.
func (s ProductionStatus) ShouldPoll() bool { return !s.IsTerminal() }

// Failed reports whether s is a terminal failure.
func (s ProductionStatus) Failed() bool { return s == ProductionFailed || s == ProductionError }

// AssetStatus is the generation state of a single scene image or track.
type AssetStatus string

const (
	AssetPending    AssetStatus = "pending"
	AssetGenerating AssetStatus = "generating"
	AssetPolling    AssetStatus = "polling"
	AssetCompleted  AssetStatus = "completed"
	AssetFailed     AssetStatus = "failed"
)

// Known reports whether s is one of the documented asset states.
func (s AssetStatus) Known() bool {
	switch s {
	case AssetPending, AssetGenerating, AssetPolling, AssetCompleted, AssetFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the asset is finished, successfully or not.
func (s AssetStatus) IsTerminal() bool {
	return s == AssetCompleted || s == AssetFailed
}

// InProgress reports whether the backend is actively producing the asset.
func (s AssetStatus) InProgress() bool {
	return s == AssetGenerating || s == AssetPolling
}

// AnyResearchActive reports whether at least one job still needs polling.
func AnyResearchActive(jobs []ResearchJob) bool {
	for _, j := range jobs {
		if j.Status.ShouldPoll() {
			return true
		}
	}
	return false
}

// AnyCurationActive reports whether at least one job still needs polling.
func AnyCurationActive(jobs []CurationJob) bool {
	for _, j := range jobs {
		if j.Status.ShouldPoll() {
			return true
		}
	}
	return false
}

// AnyProductionActive reports whether at least one job still needs polling.
func AnyProductionActive(jobs []ProductionJob) bool {
	for _, j := range jobs {
		if j.Status.ShouldPoll() {
			return true
		}
	}
	return false
}
