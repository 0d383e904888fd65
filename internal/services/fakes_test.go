package services

import (
	"context"
	"sync"
	"time"

	"github.com/taskmate/apiserver/internal/mailer"
	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/types"
)

// In-memory repositories mirroring the store implementations closely enough
// for service-level tests, including the bootstrap role assignment, the
// duplicate sentinels, and the reset redeem contract.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	if len(r.users) == 0 {
		user.Role = types.RoleAdmin
	} else {
		user.Role = types.RoleMember
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *fakeUserRepo) setRole(id int, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[id]
	user.Role = role
	r.users[id] = user
}

func (r *fakeUserRepo) delete(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type fakeResetRepo struct {
	mu     sync.Mutex
	users  *fakeUserRepo
	nextID int
	otps   []types.PasswordResetOTP
}

func newFakeResetRepo(users *fakeUserRepo) *fakeResetRepo {
	return &fakeResetRepo{users: users}
}

func (r *fakeResetRepo) Issue(_ context.Context, otp types.PasswordResetOTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.otps {
		if r.otps[i].UserID == otp.UserID && !r.otps[i].Used {
			r.otps[i].Used = true
		}
	}
	r.nextID++
	otp.ID = r.nextID
	otp.Used = false
	otp.Attempts = 0
	otp.CreatedAt = time.Now()
	r.otps = append(r.otps, otp)
	return nil
}

func (r *fakeResetRepo) Redeem(ctx context.Context, userID int, decide func(types.PasswordResetOTP) store.RedeemOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.otps {
		if r.otps[i].UserID == userID && !r.otps[i].Used {
			if idx == -1 || r.otps[i].ID > r.otps[idx].ID {
				idx = i
			}
		}
	}
	if idx == -1 {
		return store.ErrNotFound
	}

	outcome := decide(r.otps[idx])
	if outcome.IncrementAttempts {
		r.otps[idx].Attempts++
	}
	if outcome.MarkUsed {
		r.otps[idx].Used = true
	}
	if outcome.NewPasswordHash != "" {
		if err := r.users.UpdatePassword(ctx, userID, outcome.NewPasswordHash); err != nil {
			return err
		}
	}
	return outcome.Err
}

func (r *fakeResetRepo) activeCount(userID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for i := range r.otps {
		if r.otps[i].UserID == userID && !r.otps[i].Used {
			count++
		}
	}
	return count
}

func (r *fakeResetRepo) expireActive(userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.otps {
		if r.otps[i].UserID == userID && !r.otps[i].Used {
			r.otps[i].ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

type fakeTeamRepo struct {
	mu           sync.Mutex
	nextTeamID   int
	nextMemberID int
	teams        map[int]types.Team
	members      []types.TeamMember
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]types.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team types.Team) (types.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTeamID++
	team.ID = r.nextTeamID
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	r.teams[team.ID] = team

	r.nextMemberID++
	r.members = append(r.members, types.TeamMember{
		ID:        r.nextMemberID,
		TeamID:    team.ID,
		UserID:    team.CreatedBy,
		TeamRole:  types.TeamRoleOwner,
		CreatedAt: team.CreatedAt,
	})
	return team, nil
}

func (r *fakeTeamRepo) Get(_ context.Context, id int) (types.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return types.Team{}, store.ErrNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team types.Team) (types.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return types.Team{}, store.ErrNotFound
	}
	team.UpdatedAt = time.Now()
	r.teams[team.ID] = team
	return team, nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.teams, id)
	kept := r.members[:0]
	for _, member := range r.members {
		if member.TeamID != id {
			kept = append(kept, member)
		}
	}
	r.members = kept
	return nil
}

func (r *fakeTeamRepo) ListByUser(_ context.Context, userID int) ([]types.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var teams []types.Team
	for _, member := range r.members {
		if member.UserID == userID {
			if team, ok := r.teams[member.TeamID]; ok {
				teams = append(teams, team)
			}
		}
	}
	return teams, nil
}

func (r *fakeTeamRepo) GetMember(_ context.Context, teamID, userID int) (types.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range r.members {
		if member.TeamID == teamID && member.UserID == userID {
			return member, nil
		}
	}
	return types.TeamMember{}, store.ErrNotFound
}

func (r *fakeTeamRepo) ListMembers(_ context.Context, teamID int) ([]types.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var members []types.TeamMember
	for _, member := range r.members {
		if member.TeamID == teamID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, member types.TeamMember) (types.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.members {
		if existing.TeamID == member.TeamID && existing.UserID == member.UserID {
			return types.TeamMember{}, store.ErrDuplicate
		}
	}
	r.nextMemberID++
	member.ID = r.nextMemberID
	member.CreatedAt = time.Now()
	r.members = append(r.members, member)
	return member, nil
}

func (r *fakeTeamRepo) RemoveMember(_ context.Context, teamID, memberID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, member := range r.members {
		if member.TeamID == teamID && member.ID == memberID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	nextID   int
	projects map[int]types.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[int]types.Project)}
}

func (r *fakeProjectRepo) Get(_ context.Context, id int) (types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[id]
	if !ok {
		return types.Project{}, store.ErrNotFound
	}
	return project, nil
}

func (r *fakeProjectRepo) Create(_ context.Context, project types.Project) (types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	project.ID = r.nextID
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	r.projects[project.ID] = project
	return project, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project types.Project) (types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return types.Project{}, store.ErrNotFound
	}
	project.UpdatedAt = time.Now()
	r.projects[project.ID] = project
	return project, nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) ListByTeam(_ context.Context, teamID int) ([]types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var projects []types.Project
	for _, project := range r.projects {
		if project.TeamID == teamID {
			projects = append(projects, project)
		}
	}
	return projects, nil
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]types.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int]types.Task)}
}

func (r *fakeTaskRepo) Get(_ context.Context, id int) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task types.Task) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task types.Task) (types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return types.Task{}, store.ErrNotFound
	}
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) ListByProject(_ context.Context, projectID int) ([]types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tasks []types.Task
	for _, task := range r.tasks {
		if task.ProjectID == projectID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	nextID   int
	messages []types.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, message types.Message) (types.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	message.ID = r.nextID
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return message, nil
}

func (r *fakeMessageRepo) ListByTeam(_ context.Context, teamID int) ([]types.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []types.Message
	for _, message := range r.messages {
		if message.TeamID == teamID {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}
