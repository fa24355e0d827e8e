package category_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
	"github.com/MrJamesThe3rd/spendly/internal/live"
)

func newService(repo category.Repository) *category.Service {
	return category.NewService(repo, live.NewHub(), slog.Default())
}

func TestService_EnsureDefaults(t *testing.T) {
	type testCase struct {
		name      string
		userID    string
		setupMock func(m *category.MockRepository)
		want      int
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "FirstSignIn",
			userID: "u1",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					SeedDefaults(gomock.Any(), "u1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, defaults []*category.Category) (int, error) {
						assert.Len(t, defaults, 7)

						for _, d := range defaults {
							assert.Equal(t, category.KindDefault, d.Kind)
							assert.Equal(t, category.StateActive, d.State)
						}

						return len(defaults), nil
					})
			},
			want: 7,
		},
		{
			name:   "AlreadySeeded",
			userID: "u1",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().SeedDefaults(gomock.Any(), "u1", gomock.Any()).Return(0, nil)
			},
			want: 0,
		},
		{
			name:   "StoreError",
			userID: "u1",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().SeedDefaults(gomock.Any(), "u1", gomock.Any()).Return(0, errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name:    "NoUser",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := newService(repo).EnsureDefaults(context.Background(), tt.userID)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Create(t *testing.T) {
	existing := []*category.Category{
		{ID: uuid.New(), UserID: "u1", Label: "Bills", Kind: category.KindDefault, State: category.StateActive},
	}

	type testCase struct {
		name      string
		params    category.CreateParams
		setupMock func(m *category.MockRepository)
		wantField string
	}

	tests := []testCase{
		{
			name:   "Success",
			params: category.CreateParams{Label: " Pets ", Color: "bg-teal-500", Icon: "Heart"},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any(), "u1", false).Return(existing, nil)
				m.EXPECT().
					CreateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						assert.Equal(t, "Pets", c.Label)
						assert.Equal(t, category.KindCustom, c.Kind)
						assert.Equal(t, category.StateActive, c.State)
						c.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:      "EmptyLabel",
			params:    category.CreateParams{Label: "  ", Color: "bg-teal-500", Icon: "Heart"},
			wantField: "label",
		},
		{
			name:      "LabelTooLong",
			params:    category.CreateParams{Label: "Twenty-one characters", Color: "bg-teal-500", Icon: "Heart"},
			wantField: "label",
		},
		{
			name:      "ColorOutsidePalette",
			params:    category.CreateParams{Label: "Pets", Color: "bg-black", Icon: "Heart"},
			wantField: "color",
		},
		{
			name:      "UnknownIcon",
			params:    category.CreateParams{Label: "Pets", Color: "bg-teal-500", Icon: "Dog"},
			wantField: "icon",
		},
		{
			name:   "DuplicateActiveLabel",
			params: category.CreateParams{Label: "bills", Color: "bg-teal-500", Icon: "Home"},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any(), "u1", false).Return(existing, nil)
			},
			wantField: "label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := newService(repo).Create(context.Background(), "u1", tt.params)

			if tt.wantField != "" {
				var verr *category.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Create_NoUser(t *testing.T) {
	_, err := newService(nil).Create(context.Background(), "", category.CreateParams{Label: "Pets"})
	assert.ErrorIs(t, err, identity.ErrNotAuthenticated)
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		params    category.UpdateParams
		stored    *category.Category
		setupMock func(m *category.MockRepository)
		wantErr   error
		wantField string
	}

	active := func() *category.Category {
		return &category.Category{ID: id, UserID: "u1", Label: "Other", Color: "bg-slate-500", Icon: "MoreHorizontal", Kind: category.KindDefault, State: category.StateActive}
	}

	tests := []testCase{
		{
			name:   "RenameDefault",
			params: category.UpdateParams{Label: new("Misc")},
			stored: active(),
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any(), "u1", false).Return([]*category.Category{active()}, nil)
				m.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "BadColor",
			params:    category.UpdateParams{Color: new("bg-black")},
			stored:    active(),
			wantField: "color",
		},
		{
			name:    "Archived",
			params:  category.UpdateParams{Label: new("Misc")},
			stored:  &category.Category{ID: id, UserID: "u1", State: category.StateArchived},
			wantErr: category.ErrArchived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			repo.EXPECT().GetCategory(gomock.Any(), "u1", id).Return(tt.stored, nil)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := newService(repo).Update(context.Background(), "u1", id, tt.params)

			switch {
			case tt.wantField != "":
				var verr *category.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "Misc", got.Label)
			}
		})
	}
}

func TestService_Archive(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		setupMock func(m *category.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Active",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), "u1", id).
					Return(&category.Category{ID: id, State: category.StateActive}, nil)
				m.EXPECT().SetState(gomock.Any(), "u1", id, category.StateArchived).Return(nil)
			},
		},
		{
			name: "AlreadyArchived",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), "u1", id).
					Return(&category.Category{ID: id, State: category.StateArchived}, nil)
			},
		},
		{
			name: "NotFound",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), "u1", id).Return(nil, category.ErrNotFound)
			},
			wantErr: category.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			tt.setupMock(repo)

			err := newService(repo).Archive(context.Background(), "u1", id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Subscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := category.NewMockRepository(ctrl)
	hub := live.NewHub()
	svc := category.NewService(repo, hub, slog.Default())

	first := []*category.Category{{Label: "Bills"}}
	second := []*category.Category{{Label: "Bills"}, {Label: "Pets"}}

	gomock.InOrder(
		repo.EXPECT().ListCategories(gomock.Any(), "u1", false).Return(first, nil),
		repo.EXPECT().ListCategories(gomock.Any(), "u1", false).Return(second, nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, err := svc.Subscribe(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, <-snapshots)

	hub.Notify(live.Key(live.TopicCategories, "u1"))

	select {
	case got := <-snapshots:
		assert.Equal(t, second, got)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after change")
	}
}

func TestPalette(t *testing.T) {
	assert.Len(t, category.Palette, 18)
	assert.Equal(t, "#ef4444", category.Hex("bg-red-500"))
	assert.Equal(t, "#ea580c", category.Hex("bg-orange-600"))
	assert.Equal(t, "#9ca3af", category.Hex("bg-unknown"))

	assert.Equal(t, "Coffee", category.ResolveIcon("Coffee"))
	assert.Equal(t, category.FallbackIcon, category.ResolveIcon(""))
	assert.Equal(t, category.UnknownIcon, category.ResolveIcon("Dog"))

	for _, d := range category.Defaults() {
		assert.True(t, category.ValidIcon(d.Icon), d.Label)
		assert.NotEqual(t, category.Hex(category.NeutralColor), category.Hex(d.Color), d.Label)
	}
}
