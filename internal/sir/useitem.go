package sir

import "semacore/internal/source"

// UseItemData is a single node of a parsed `use` import tree.
type UseItemData interface {
	Kind() UseItemKind
}

type UseItem struct {
	Data UseItemData
	Span source.Span
}

func (u UseItem) Kind() UseItemKind {
	if u.Data == nil {
		return UseItemIdent
	}
	return u.Data.Kind()
}

// UseIdentData is a bare name; at the use-tree root it names a top-level
// module, elsewhere a child of the previously resolved symbol (spec §4.4).
type UseIdentData struct {
	Name   source.StringID
	Symbol SymbolID // target symbol, attached by C4
}

func (UseIdentData) Kind() UseItemKind { return UseItemIdent }

// UseRebindData is `ident as local_name`; the collector (C3) already
// inserted LocalName into the enclosing table, and C4 attaches Target.
type UseRebindData struct {
	Ident     source.StringID
	LocalName source.StringID
	Symbol    SymbolID
}

func (UseRebindData) Kind() UseItemKind { return UseItemRebind }

// UseDotData is `lhs.rhs`: resolve LHS, then look RHS up inside its
// resolved symbol's table or child modules (spec §4.4).
type UseDotData struct {
	LHS, RHS UseItemID
}

func (UseDotData) Kind() UseItemKind { return UseItemDot }

// UseListData is `lhs.{a, b, c}`: each Items entry resolves against the
// accumulated LHS symbol.
type UseListData struct {
	LHS   UseItemID
	Items []UseItemID
}

func (UseListData) Kind() UseItemKind { return UseItemList }
