package s3

import (
	"io"
	"io/ioutil"
)

// NewMockBasicClient returns an in-memory BasicClient for tests.
func NewMockBasicClient() *MockBasicClient {
	return &MockBasicClient{Objects: make(map[string][]byte)}
}

type MockBasicClient struct {
	Objects map[string][]byte
	PutErr  error // returned by Put/BufferPut when set.
}

func (m *MockBasicClient) Get(key string) ([]byte, error) {
	data, ok := m.Objects[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return data, nil
}

func (m *MockBasicClient) Put(key string, data []byte) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Objects[key] = data
	return nil
}

func (m *MockBasicClient) BufferPut(key string, dataBuf io.ReadSeeker) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := ioutil.ReadAll(dataBuf)
	if err != nil {
		return err
	}
	m.Objects[key] = data
	return nil
}

func (m *MockBasicClient) Delete(key string) error {
	delete(m.Objects, key)
	return nil
}
