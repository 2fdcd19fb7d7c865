package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return New(gormDB), mock
}

func TestLoadPropagatesDriverFailure(t *testing.T) {
	st, mock := setupMockDB(t)

	driverErr := errors.New("connection reset by peer")
	mock.ExpectQuery("SELECT \\* FROM `posts`").WillReturnError(driverErr)

	post, err := st.Post(context.Background(), "1-7")
	assert.Nil(t, post)
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMapsNotFoundToNil(t *testing.T) {
	st, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id"})
	mock.ExpectQuery("SELECT \\* FROM `posts`").WillReturnRows(rows)

	post, err := st.Post(context.Background(), "1-7")
	assert.NoError(t, err)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}
