package redis

const (
	fieldLikes   = "likes"
	fieldPayload = "payload"

	postIDCounterKey  = "posts:id"
	activityStreamKey = "activity"
)

func postKey(postID string) string {
	return "post:" + postID
}

func singleVotesKey(userID string) string {
	return "user:" + userID + ":votes:single"
}

func changeableVotesKey(userID string) string {
	return "user:" + userID + ":votes:changeable"
}

func rankingKey(scope string) string {
	return "ranking:" + scope
}

func rateLimitKey(userID string) string {
	return "user:" + userID + ":rate-limit"
}

func pageKey(page string) string {
	return "page:" + page
}

func pageVisitKey(page string) string {
	return "page:" + page + ":visit-count"
}
