package core

import "github.com/go-gl/mathgl/mgl64"

// stateTextTarget is the comparison key for idempotent state-text updates
// (§4.12, §8.4): text, severity, target entity, target position and
// surface. If all fields are equal to the previous update, the prior
// rendering handle is retained; otherwise it is destroyed and recreated.
type stateTextTarget struct {
	text     string
	severity Severity
	entity   EntityID
	hasPos   bool
	pos      mgl64.Vec2
	surface  string
}

// ApplyAgentStateText renders details above agent's head, reusing the
// previous render handle when nothing observable changed. The agent's
// current position (read through adapter) participates in the comparison
// key; surface is left empty on both sides, since Agent carries none. A
// host may move an agent between calls without the text itself changing
// (§4.12: target position is one of the compared fields, so a position-only
// move still forces a re-render even when the text is identical).
func ApplyAgentStateText(adapter WorldAdapter, agent *Agent, details StateDetails) {
	pos, hasPos := adapter.EntityPosition(agent.Entity)
	target := stateTextTarget{
		text:     details.Text,
		severity: details.Severity,
		entity:   agent.Entity,
		hasPos:   hasPos,
		pos:      pos,
	}

	if agent.hasText {
		prev := stateTextTarget{
			text:     agent.lastText.Text,
			severity: agent.lastText.Severity,
			entity:   agent.Entity,
			hasPos:   agent.lastHasPos,
			pos:      agent.lastPos,
		}
		if prev == target {
			// Equal on every compared field: retain the existing handle,
			// performing no render call at all (§8.4).
			return
		}
		adapter.DestroyRender(agent.render)
	}

	agent.render = adapter.RenderText("", pos, details.Text, details.Severity)
	agent.lastText = details
	agent.lastPos = pos
	agent.lastHasPos = hasPos
	agent.hasText = true
}
