// Package mocks provides function-field mocks of the service interfaces for
// handler and middleware tests.
//
// Each mock calls its XxxFn field when set and otherwise returns the default
// values stored on the struct:
//
//	tasks := &mocks.MockTaskService{
//	    GetTaskFn: func(ctx context.Context, caller, id uuid.UUID) (*domain.Task, error) {
//	        return nil, store.ErrTaskNotFound
//	    },
//	}
package mocks
