package consts

const (
	PostUpvoteKey      = "post:upvote:"
	PostDownvoteKey    = "post:downvote:"
	PostLikeKey        = "post:like:"
	PostViewKey        = "post:view:"
	PostCommentKey     = "post:comment:"
	PostReportKey      = "post:report:"
	PostVoteDirtyKey   = "post:vote:dirty"
	PostLikeDirtyKey   = "post:like:dirty"
	CommentLikeKey     = "comment:like:"
	CommentLikeDirtyKey = "comment:like:dirty"
)

const (
	ReportLock = "report:lock:"
)
