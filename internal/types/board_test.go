package types

import "testing"

func TestBoardValidate(t *testing.T) {
	tests := []struct {
		name    string
		board   Board
		wantErr bool
	}{
		{name: "valid", board: Board{Name: "Roadmap"}, wantErr: false},
		{name: "missing name", board: Board{}, wantErr: true},
		{name: "name too long", board: Board{Name: string(make([]byte, 201))}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.board.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestColumnValidate(t *testing.T) {
	tests := []struct {
		name    string
		column  Column
		wantErr bool
	}{
		{name: "valid", column: Column{BoardID: "brd-1", Name: "Todo"}, wantErr: false},
		{name: "missing board id", column: Column{Name: "Todo"}, wantErr: true},
		{name: "missing name", column: Column{BoardID: "brd-1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.column.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
