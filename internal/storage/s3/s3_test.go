package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	puts    map[string]string
	deletes []string
	err     error
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func stubAWS(t *testing.T, api objectAPI, check func(lo awsconfig.LoadOptions, so s3.Options)) {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		var so s3.Options
		for _, fn := range optFns {
			fn(&so)
		}
		if check != nil {
			check(lo, so)
		}
		return api
	}
}

func TestNew_AppliesOptions(t *testing.T) {
	called := false
	stubAWS(t, &fakeAPI{}, func(lo awsconfig.LoadOptions, so s3.Options) {
		called = true
		assert.Equal(t, "eu-north-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		require.NotNil(t, so.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000", *so.BaseEndpoint)
		assert.True(t, so.UsePathStyle)
	})

	_, err := New(context.Background(), Options{
		Bucket: "orion", Region: "eu-north-1", BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey: "minioadmin", SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestNew_DefaultChain(t *testing.T) {
	stubAWS(t, &fakeAPI{}, func(lo awsconfig.LoadOptions, so s3.Options) {
		assert.Nil(t, lo.Credentials)
		assert.Nil(t, so.BaseEndpoint)
		assert.False(t, so.UsePathStyle)
	})
	_, err := New(context.Background(), Options{Bucket: "orion", Region: "us-east-1"})
	require.NoError(t, err)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.Error(t, err)

	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}
	_, err = New(context.Background(), Options{Bucket: "orion"})
	require.ErrorContains(t, err, "no profile")
}

func TestStore_PutDelete(t *testing.T) {
	api := &fakeAPI{}
	stubAWS(t, api, nil)
	s, err := New(context.Background(), Options{Bucket: "orion", Prefix: "/mirror/"})
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "40_shots/stc_0010/a.exr", strings.NewReader("abc"), 3))
	assert.Equal(t, map[string]string{"orion/mirror/40_shots/stc_0010/a.exr": "abc"}, api.puts)
	assert.Equal(t, "s3://orion/mirror/40_shots/stc_0010/a.exr", s.Location("40_shots/stc_0010/a.exr"))

	require.NoError(t, s.Delete(context.Background(), "40_shots/stc_0010/a.exr"))
	assert.Equal(t, []string{"mirror/40_shots/stc_0010/a.exr"}, api.deletes)

	api.err = errors.New("access denied")
	require.ErrorContains(t, s.Put(context.Background(), "k", strings.NewReader(""), 0), "access denied")
	require.ErrorContains(t, s.Delete(context.Background(), "k"), "access denied")
}
