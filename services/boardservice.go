package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"hrtracker/dto"
	"hrtracker/model"
	"hrtracker/orderindex"
)

// BoardService administers boards and their state columns.
type BoardService struct {
	core
}

func NewBoardService(d Deps) *BoardService {
	return &BoardService{core: newCore(d)}
}

// CreateBoard creates a board owned by actor and clones the state template
// onto it. The first and last template states become immutable.
func (s *BoardService) CreateBoard(ctx context.Context, actor string, req dto.CreateBoardRequest) (*dto.BoardView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidf("board name is required")
	}
	if _, err := s.Members.Project(ctx, req.ProjectID); err != nil {
		return nil, lookup(err, "project", req.ProjectID)
	}
	if err := s.authorize(ctx, req.ProjectID, actor); err != nil {
		return nil, err
	}

	var board model.Board
	var states []model.State
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		board = model.Board{
			BoardID:   uuid.NewString(),
			ProjectID: req.ProjectID,
			Name:      name,
			OwnerID:   actor,
			Status:    model.BoardActive,
			CreatedAt: u.now,
		}
		u.putBoard(board)
		states = states[:0]
		last := len(s.StateTemplate) - 1
		for i, tpl := range s.StateTemplate {
			st := model.State{
				StateID:   uuid.NewString(),
				BoardID:   board.BoardID,
				Name:      tpl.Name,
				Order:     i + 1,
				Immutable: i == 0 || i == last,
				CreatedAt: u.now,
			}
			u.putState(st)
			states = append(states, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewBoardView(board, states), nil
}

func (s *BoardService) GetBoard(ctx context.Context, actor, boardID string) (*dto.BoardView, error) {
	board, err := s.Store.Board(ctx, boardID)
	if err != nil {
		return nil, lookup(err, "board", boardID)
	}
	if err := s.authorize(ctx, board.ProjectID, actor); err != nil {
		return nil, err
	}
	states, err := s.Store.StatesByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return dto.NewBoardView(*board, states), nil
}

func (s *BoardService) Archive(ctx context.Context, actor, boardID string) (*dto.BoardView, error) {
	return s.setStatus(ctx, actor, boardID, model.BoardArchived)
}

func (s *BoardService) Restore(ctx context.Context, actor, boardID string) (*dto.BoardView, error) {
	return s.setStatus(ctx, actor, boardID, model.BoardActive)
}

func (s *BoardService) setStatus(ctx context.Context, actor, boardID string, status model.BoardStatus) (*dto.BoardView, error) {
	var view *dto.BoardView
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		board, err := u.board(boardID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, board.ProjectID, actor); err != nil {
			return err
		}
		states, err := u.statesOf(boardID)
		if err != nil {
			return err
		}
		if board.Status != status {
			board.Status = status
			u.putBoard(board)
		}
		view = dto.NewBoardView(board, states)
		return nil
	})
	return view, err
}

// AddState inserts a mutable column. The order defaults to the slot just
// before the exit state and must stay strictly inside the boundaries.
func (s *BoardService) AddState(ctx context.Context, actor, boardID string, req dto.AddStateRequest) (*dto.StateView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidf("state name is required")
	}
	var created model.State
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		board, err := u.activeBoard(boardID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, board.ProjectID, actor); err != nil {
			return err
		}
		states, err := u.statesOf(boardID)
		if err != nil {
			return err
		}
		exit, ok := exitState(states)
		if !ok {
			return notFound("state", "exit of board "+boardID)
		}
		order := exit.Order
		if req.Order != nil {
			order = *req.Order
		}
		if order < 2 || order > exit.Order {
			return ErrOrderOutOfBounds
		}
		byID := map[string]model.State{}
		for _, st := range states {
			byID[st.StateID] = st
		}
		for _, e := range orderindex.Insert(stateEntries(states), order) {
			st := byID[e.ID]
			st.Order = e.Order
			u.putState(st)
		}
		created = model.State{
			StateID:   uuid.NewString(),
			BoardID:   boardID,
			Name:      name,
			Order:     order,
			CreatedAt: u.now,
		}
		u.putState(created)
		u.touchBoard(boardID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := dto.NewStateView(created)
	return &v, nil
}

// UpdateState renames a state and, for mutable states, moves it between the
// boundaries.
func (s *BoardService) UpdateState(ctx context.Context, actor, stateID string, req dto.UpdateStateRequest) (*dto.StateView, error) {
	var updated model.State
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		st, err := u.state(stateID)
		if err != nil {
			return err
		}
		board, err := u.activeBoard(st.BoardID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, board.ProjectID, actor); err != nil {
			return err
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return invalidf("state name is required")
			}
			st.Name = name
		}
		if req.Order != nil && *req.Order != st.Order {
			if st.Immutable {
				return ErrImmutableState
			}
			states, err := u.statesOf(st.BoardID)
			if err != nil {
				return err
			}
			exit, _ := exitState(states)
			if *req.Order < 2 || *req.Order >= exit.Order {
				return ErrOrderOutOfBounds
			}
			shifted, err := orderindex.Move(stateEntries(states), st.StateID, *req.Order)
			if err != nil {
				return ErrOrderOutOfBounds
			}
			byID := map[string]model.State{}
			for _, other := range states {
				byID[other.StateID] = other
			}
			for _, e := range shifted {
				if e.ID == st.StateID {
					st.Order = e.Order
					continue
				}
				other := byID[e.ID]
				other.Order = e.Order
				u.putState(other)
			}
			u.touchBoard(st.BoardID)
		}
		u.putState(st)
		updated = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := dto.NewStateView(updated)
	return &v, nil
}

// DeleteState soft-deletes a mutable state that holds no active task and
// closes the gap in the board's state orders.
func (s *BoardService) DeleteState(ctx context.Context, actor, stateID string) error {
	return s.run(ctx, actor, func(u *unitOfWork) error {
		st, err := u.state(stateID)
		if err != nil {
			return err
		}
		board, err := u.activeBoard(st.BoardID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, board.ProjectID, actor); err != nil {
			return err
		}
		if st.Immutable {
			return ErrImmutableState
		}
		tasks, err := u.inState(stateID)
		if err != nil {
			return err
		}
		if len(tasks) > 0 {
			return ErrStateHasTasks
		}
		states, err := u.statesOf(st.BoardID)
		if err != nil {
			return err
		}
		byID := map[string]model.State{}
		for _, other := range states {
			byID[other.StateID] = other
		}
		for _, e := range orderindex.Remove(stateEntries(states), st.Order) {
			other := byID[e.ID]
			other.Order = e.Order
			u.putState(other)
		}
		st.Deleted = true
		u.putState(st)
		u.touchBoard(st.BoardID)
		return nil
	})
}
