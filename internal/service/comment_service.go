package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/linkpreview"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"sort"
	"time"

	"github.com/jinzhu/copier"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID uint64, username string, req *dto.CommentCreateDTO) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) error

	// LikeComment / UnlikeComment 是可逆的评论点赞对
	LikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentLikeResultDTO, error)
	UnlikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentLikeResultDTO, error)

	// GetCommentTree 返回两级评论树，sortBy 仅作用于一级评论
	GetCommentTree(ctx context.Context, postID uint64, sortBy string, currentUserID uint64) ([]*dto.CommentDTO, error)
}

type commentServiceImpl struct {
	commentRepo repository.CommentRepo
	postRepo    repository.PostRepo
	actionRepo  repository.PostActionRepo
	userRepo    repository.UserRepo
	previewer   linkpreview.Fetcher
}

func NewCommentService(
	commentRepo repository.CommentRepo,
	postRepo repository.PostRepo,
	actionRepo repository.PostActionRepo,
	userRepo repository.UserRepo,
	previewer linkpreview.Fetcher,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		actionRepo:  actionRepo,
		userRepo:    userRepo,
		previewer:   previewer,
	}
}

func (s *commentServiceImpl) CreateComment(ctx context.Context, userID uint64, username string, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	post, err := s.postRepo.GetPost(ctx, req.PostID)
	if err != nil || post == nil {
		return nil, ErrPostNotFound
	}

	// 回复目标必须是同一帖子下的存量评论
	if req.ParentCommentID != 0 {
		parent, perr := s.commentRepo.GetCommentByID(ctx, req.ParentCommentID)
		if perr != nil {
			return nil, perr
		}
		if parent == nil || parent.PostID != req.PostID {
			return nil, ErrCommentNotFound
		}
	}

	if err = s.userRepo.EnsureUser(ctx, userID, username); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:          req.PostID,
		UserID:          userID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
		ImageURL:        req.ImageURL,
		LinkURL:         req.LinkURL,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	// 预览抓取失败不阻塞发评论
	if req.LinkURL != "" && s.previewer != nil {
		if preview := s.previewer.Fetch(ctx, req.LinkURL); preview != nil {
			comment.LinkPreview = &model.LinkPreview{
				Title:       preview.Title,
				Description: preview.Description,
				Image:       preview.Image,
				URL:         preview.URL,
			}
		} else {
			log.WarnContext(ctx, "link preview fetch failed", "url", req.LinkURL)
		}
	}

	if err = s.commentRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.toCommentDTO(comment, false), nil
}

func (s *commentServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	if userID == 0 {
		return ErrLoginRequired
	}
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		return UnauthorizedError
	}
	return s.commentRepo.DeleteComment(ctx, commentID)
}

func (s *commentServiceImpl) LikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentLikeResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil || comment == nil {
		return nil, ErrCommentNotFound
	}

	exists, err := s.actionRepo.CheckCommentLikeExists(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &dto.CommentLikeResultDTO{Outcome: dto.OutcomeAlreadyApplied, Likes: comment.Likes}, nil
	}

	if err = s.actionRepo.CreateCommentLike(ctx, &model.CommentLike{UserID: userID, CommentID: commentID, CreatedAt: time.Now()}); err != nil {
		if isDuplicateError(err) {
			return &dto.CommentLikeResultDTO{Outcome: dto.OutcomeAlreadyApplied, Likes: comment.Likes}, nil
		}
		return nil, err
	}

	if err = s.commentRepo.AdjustLikes(ctx, commentID, 1); err != nil {
		log.ErrorContext(ctx, "comment like counter sync failed", "commentID", commentID, "err", err)
	}

	res := &dto.CommentLikeResultDTO{Outcome: dto.OutcomeApplied, Likes: comment.Likes + 1}
	if fresh, ferr := s.commentRepo.GetCommentByID(ctx, commentID); ferr == nil && fresh != nil {
		res.Likes = fresh.Likes
	}
	return res, nil
}

func (s *commentServiceImpl) UnlikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentLikeResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil || comment == nil {
		return nil, ErrCommentNotFound
	}

	affected, err := s.actionRepo.DeleteCommentLike(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// 本来就没点过赞，计数不动
		return &dto.CommentLikeResultDTO{Outcome: dto.OutcomeAlreadyApplied, Likes: comment.Likes}, nil
	}

	if err = s.commentRepo.AdjustLikes(ctx, commentID, -1); err != nil {
		log.ErrorContext(ctx, "comment like counter sync failed", "commentID", commentID, "err", err)
	}

	res := &dto.CommentLikeResultDTO{Outcome: dto.OutcomeApplied, Likes: clampZero(comment.Likes - 1)}
	if fresh, ferr := s.commentRepo.GetCommentByID(ctx, commentID); ferr == nil && fresh != nil {
		res.Likes = fresh.Likes
	}
	return res, nil
}

func (s *commentServiceImpl) GetCommentTree(ctx context.Context, postID uint64, sortBy string, currentUserID uint64) ([]*dto.CommentDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil || post == nil {
		return nil, ErrPostNotFound
	}

	comments, err := s.commentRepo.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []*dto.CommentDTO{}, nil
	}

	likedSet := make(map[uint64]struct{})
	if currentUserID != 0 {
		ids := make([]uint64, 0, len(comments))
		for _, c := range comments {
			ids = append(ids, c.ID)
		}
		likedIDs, lerr := s.actionRepo.GetLikedCommentIDs(ctx, currentUserID, ids)
		if lerr != nil {
			log.WarnContext(ctx, "query liked comments failed", "userID", currentUserID, "err", lerr)
		}
		for _, id := range likedIDs {
			likedSet[id] = struct{}{}
		}
	}

	dtos := make([]*dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		_, liked := likedSet[c.ID]
		dtos = append(dtos, s.toCommentDTO(c, liked))
	}
	return buildCommentTree(dtos, sortBy), nil
}

// buildCommentTree 把按时间升序的平铺评论组装成两级树。
// 父评论已被删除的回复降级为一级评论，回复始终按时间升序。
func buildCommentTree(comments []*dto.CommentDTO, sortBy string) []*dto.CommentDTO {
	index := make(map[uint64]*dto.CommentDTO, len(comments))
	for _, c := range comments {
		index[c.ID] = c
	}

	roots := make([]*dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		if c.ParentCommentID == 0 {
			roots = append(roots, c)
			continue
		}
		if parent, ok := index[c.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, c)
		} else {
			roots = append(roots, c)
		}
	}

	switch sortBy {
	case dto.CommentSortLikes:
		sort.SliceStable(roots, func(i, j int) bool {
			return roots[i].Likes > roots[j].Likes
		})
	default:
		// latest：新评论在前
		sort.SliceStable(roots, func(i, j int) bool {
			return roots[i].CreatedAtTime.After(roots[j].CreatedAtTime)
		})
	}
	return roots
}

func (s *commentServiceImpl) toCommentDTO(c *model.Comment, liked bool) *dto.CommentDTO {
	d := &dto.CommentDTO{}
	if err := copier.Copy(d, c); err != nil {
		log.Error("copy comment model failed", "err", err)
	}
	d.CreatedAtTime = c.CreatedAt
	d.CreatedAt = c.CreatedAt.Format("2006-01-02 15:04:05")
	d.IsLiked = liked
	if c.User.ID != 0 {
		d.Username = c.User.Username
		d.AvatarURL = c.User.AvatarURL
	}
	if c.LinkPreview != nil {
		d.LinkPreview = &dto.LinkPreviewDTO{
			Title:       c.LinkPreview.Title,
			Description: c.LinkPreview.Description,
			Image:       c.LinkPreview.Image,
			URL:         c.LinkPreview.URL,
		}
	}
	return d
}
