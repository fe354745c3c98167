package events

const (
	StreamName   = "CONCORD_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectScoreUpdated(agendaID string) string     { return "concord.agenda." + agendaID + ".score.updated" }
func SubjectWeightsComputed(agendaID string) string  { return "concord.agenda." + agendaID + ".weights.computed" }
func SubjectRankingComputed(agendaID string) string  { return "concord.agenda." + agendaID + ".ranking.computed" }
func SubjectVoteCast(agendaID string) string         { return "concord.agenda." + agendaID + ".vote.cast" }
func SubjectVoteRetracted(agendaID string) string    { return "concord.agenda." + agendaID + ".vote.retracted" }
func SubjectVotesReset(agendaID string) string       { return "concord.agenda." + agendaID + ".vote.reset" }
func SubjectVotingState(agendaID string) string      { return "concord.agenda." + agendaID + ".voting.state" }
func SubjectCriteriaChanged(agendaID string) string  { return "concord.agenda." + agendaID + ".criteria.changed" }
func SubjectAlternativesChanged(agendaID string) string {
	return "concord.agenda." + agendaID + ".alternatives.changed"
}
func SubjectAgendaDeleted(agendaID string) string { return "concord.agenda." + agendaID + ".deleted" }
func SubjectAuditRecorded(agendaID string) string { return "concord.audit." + agendaID + ".recorded" }
