package dispatcher

// Topics published by match sessions and seasons.
const (
	TopicSeasonStart = "season_start"
	TopicSeasonEnd   = "season_end"
	TopicFixtures    = "fixtures"
	TopicResult      = "match_result"
	TopicStandings   = "standings"

	TopicMatchStart  = "match_start"
	TopicMatchEnd    = "match_end"
	TopicOffside     = "offside"
	TopicFoul        = "foul"
	TopicOutOfBounds = "out_of_bounds"
	TopicGoal        = "goal"
	TopicBallSample  = "ball_sample"
)

// RuleTopics lists the topics carrying rule events.
var RuleTopics = []string{TopicOffside, TopicFoul, TopicOutOfBounds}

// TopicForecast carries predicted shot paths.
const TopicForecast = "shot_forecast"
