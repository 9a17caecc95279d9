// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mocks hand-authors a gomock-style mock of codec.Codec,
// following the generated-code shape the teacher's own mockgen output
// uses (see announce/observer's Receptor mock), for tests that need to
// inject a codec failure blocknote and streamnote cannot otherwise
// provoke through any real compression library.
package mocks

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/bitmark-inc/noteledger/codec"
)

// MockCodec is a mock of the codec.Codec interface.
type MockCodec struct {
	ctrl     *gomock.Controller
	recorder *MockCodecMockRecorder
}

// MockCodecMockRecorder is the mock recorder for MockCodec.
type MockCodecMockRecorder struct {
	mock *MockCodec
}

// NewMockCodec creates a new mock instance.
func NewMockCodec(ctrl *gomock.Controller) *MockCodec {
	mock := &MockCodec{ctrl: ctrl}
	mock.recorder = &MockCodecMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCodec) EXPECT() *MockCodecMockRecorder {
	return m.recorder
}

// Name mocks base method.
func (m *MockCodec) Name() string {
	ret := m.ctrl.Call(m, "Name")
	ret0, _ := ret[0].(string)
	return ret0
}

// Name indicates an expected call of Name.
func (mr *MockCodecMockRecorder) Name() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Name", reflect.TypeOf((*MockCodec)(nil).Name))
}

// Compress mocks base method.
func (m *MockCodec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	ret := m.ctrl.Call(m, "Compress", ctx, data)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Compress indicates an expected call of Compress.
func (mr *MockCodecMockRecorder) Compress(ctx, data interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Compress", reflect.TypeOf((*MockCodec)(nil).Compress), ctx, data)
}

// Uncompress mocks base method.
func (m *MockCodec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	ret := m.ctrl.Call(m, "Uncompress", ctx, data)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Uncompress indicates an expected call of Uncompress.
func (mr *MockCodecMockRecorder) Uncompress(ctx, data interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Uncompress", reflect.TypeOf((*MockCodec)(nil).Uncompress), ctx, data)
}

// SetParams mocks base method.
func (m *MockCodec) SetParams(p codec.Params) {
	m.ctrl.Call(m, "SetParams", p)
}

// SetParams indicates an expected call of SetParams.
func (mr *MockCodecMockRecorder) SetParams(p interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetParams", reflect.TypeOf((*MockCodec)(nil).SetParams), p)
}

// StringOnly mocks base method.
func (m *MockCodec) StringOnly() bool {
	ret := m.ctrl.Call(m, "StringOnly")
	ret0, _ := ret[0].(bool)
	return ret0
}

// StringOnly indicates an expected call of StringOnly.
func (mr *MockCodecMockRecorder) StringOnly() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "StringOnly", reflect.TypeOf((*MockCodec)(nil).StringOnly))
}
