package core

import "encoding/json"

// JobDeconstructArea is the one concrete job kind this core ships: a
// player draws one or more rectangles on a surface and asks that
// everything marked for deconstruction, upgrade or (as ghosts) build
// within them be completed (§3, SPEC_FULL.md).
const JobDeconstructArea JobKind = "deconstruct_area"

// DeconstructAreaJobData is the immutable input to a JobDeconstructArea,
// set once at Create and never mutated afterwards.
type DeconstructAreaJobData struct {
	Surface string
	Areas   []Rect
	Force   Force
}

func init() {
	RegisterJobKind(JobDeconstructArea, JobKindSpec{
		PrimaryTaskKind: TaskCompleteArea,
		NewPrimaryTaskData: func(job *Job) any {
			input := job.Data.(*DeconstructAreaJobData)
			return &completeAreaData{
				Surface: input.Surface,
				Areas:   input.Areas,
				Force:   input.Force,
			}
		},
		DecodeData: func(raw json.RawMessage) (any, error) {
			data := &DeconstructAreaJobData{}
			if err := json.Unmarshal(raw, data); err != nil {
				return nil, err
			}
			return data, nil
		},
	})
}
