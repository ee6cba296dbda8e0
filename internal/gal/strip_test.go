// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		shape CommentShape
		want  StripResult
	}{
		{
			name:  "line prefix",
			line:  `  // @asset App.Auth.Login`,
			shape: cStyle,
			want:  StripResult{IsComment: true, Inner: `@asset App.Auth.Login`},
		},
		{
			name:  "hash prefix",
			line:  `# @asset App.Auth.Login`,
			shape: hashStyle,
			want:  StripResult{IsComment: true, Inner: `@asset App.Auth.Login`},
		},
		{
			name:  "javadoc continuation",
			line:  ` * -- "steals token"`,
			shape: cStyle,
			want:  StripResult{IsComment: true, Inner: `-- "steals token"`, IsContinuation: true},
		},
		{
			name:  "javadoc close is not a continuation",
			line:  ` */`,
			shape: cStyle,
			want:  StripResult{IsComment: false},
		},
		{
			name:  "self closing block",
			line:  `/* @comment -- "note" */`,
			shape: cStyle,
			want:  StripResult{IsComment: true, Inner: `@comment -- "note"`},
		},
		{
			name:  "block opener without close",
			line:  `/* @threat Session`,
			shape: cStyle,
			want:  StripResult{IsComment: true, Inner: `@threat Session`},
		},
		{
			name:  "not a comment",
			line:  `const x = 1;`,
			shape: cStyle,
			want:  StripResult{IsComment: false},
		},
		{
			name:  "html block",
			line:  `<!-- @asset Widget -->`,
			shape: htmlStyle,
			want:  StripResult{IsComment: true, Inner: `@asset Widget`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Strip(tc.line, tc.shape)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestShapeFor(t *testing.T) {
	assert.Equal(t, cStyle, ShapeFor(".ts"))
	assert.Equal(t, cStyle, ShapeFor(".TS"))
	assert.Equal(t, hashStyle, ShapeFor(".py"))
	assert.Equal(t, sqlStyle, ShapeFor(".sql"))
	assert.Equal(t, defaultShape, ShapeFor(".unknownext"))
}
