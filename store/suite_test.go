package store

import (
	"context"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite exercises the StateStore contract against any
// implementation the factory produces.
type StoreTestSuite struct {
	suite.Suite
	ctx       context.Context
	createSUT func() StateStore[string]
}

func NewStoreTestSuite(storeFactory func() StateStore[string]) *StoreTestSuite {
	return &StoreTestSuite{
		createSUT: storeFactory,
		ctx:       context.Background(),
	}
}

func (t *StoreTestSuite) TestGettingAndSetting() {
	sut := t.createSUT()

	result, err := sut.Get(t.ctx, uuid.NewString())

	assert.Empty(t.T(), result)
	assert.NoError(t.T(), err)

	newEntry := StateEntry[string]{
		Key:   uuid.NewString(),
		State: ToPtr(gofakeit.Sentence(3)),
	}

	err = sut.Set(t.ctx, newEntry)
	assert.NoError(t.T(), err)

	got, err := sut.Get(t.ctx, newEntry.Key)
	assert.NoError(t.T(), err)
	assert.Len(t.T(), got, 1)

	gotEntry := got[0]
	assert.Equal(t.T(), newEntry.Key, gotEntry.Key)
	assert.Equal(t.T(), newEntry.State, gotEntry.State)
	assert.NotEmpty(t.T(), gotEntry.Timestamp)

	updatedEntry := StateEntry[string]{
		Key:       newEntry.Key,
		State:     ToPtr(gofakeit.Sentence(3)),
		Timestamp: gotEntry.Timestamp,
	}

	err = sut.Set(t.ctx, updatedEntry)
	assert.NoError(t.T(), err)

	got, _ = sut.Get(t.ctx, updatedEntry.Key)
	gotEntry = got[0]

	assert.Equal(t.T(), updatedEntry.Key, gotEntry.Key)
	assert.Equal(t.T(), updatedEntry.State, gotEntry.State)
	assert.NotEmpty(t.T(), gotEntry.Timestamp)

	err = sut.Set(t.ctx, StateEntry[string]{
		Key:       updatedEntry.Key,
		State:     nil,
		Timestamp: gotEntry.Timestamp,
	})
	assert.NoError(t.T(), err)

	result, err = sut.Get(t.ctx, updatedEntry.Key)

	assert.Empty(t.T(), result)
	assert.NoError(t.T(), err)
}

func (t *StoreTestSuite) TestOptimisticConcurrency() {
	sut := t.createSUT()

	newEntry := StateEntry[string]{
		Key:   uuid.NewString(),
		State: ToPtr(gofakeit.Sentence(3)),
	}

	err := sut.Set(t.ctx, newEntry)
	assert.NoError(t.T(), err)

	retrieved, err := sut.Get(t.ctx, newEntry.Key)
	assert.NotEmpty(t.T(), retrieved)
	assert.NoError(t.T(), err)

	// Writing the retrieved entry back succeeds and bumps the timestamp
	err = sut.Set(t.ctx, retrieved...)
	assert.NoError(t.T(), err)

	// Writing it back again carries a stale timestamp
	err = sut.Set(t.ctx, retrieved...)

	var conflict *StateStoreConflict
	if assert.ErrorAs(t.T(), err, &conflict) {
		assert.Contains(t.T(), conflict.GetConflicts(), newEntry.Key)
	}
}
